package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// NoAttempts is displayed instead of a percentage when nothing was attempted.
const NoAttempts = "-"

// FormatPercentage renders a shooting line for display.
func FormatPercentage(s model.ShootingLine) string {
	if s.Attempted == 0 {
		return NoAttempts
	}
	return strconv.Itoa(s.Pct) + "%"
}

var csvHeader = []string{
	"player", "jersey", "position", "pts",
	"fgm", "fga", "fg_pct", "3pm", "3pa", "3p_pct", "ftm", "fta", "ft_pct",
	"ast", "reb", "stl", "blk", "tov", "pf", "sub",
}

// WriteCSV writes one row per player line followed by a TEAM row.
func WriteCSV(w io.Writer, s model.ExtractedGameStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range s.PlayerStats {
		row := []string{l.Name, strconv.Itoa(l.JerseyNumber), l.Position, strconv.Itoa(l.Points)}
		row = append(row, shootingCells(l.FieldGoals, l.ThreePointers, l.FreeThrows)...)
		row = append(row, ints(l.Assists, l.Rebounds, l.Steals, l.Blocks, l.Turnovers, l.Fouls, l.Substitutions)...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", l.Name, err)
		}
	}
	t := s.TeamStats
	row := []string{"TEAM", "", "", strconv.Itoa(t.Points)}
	row = append(row, shootingCells(t.FieldGoals, t.ThreePointers, t.FreeThrows)...)
	row = append(row, ints(t.Assists, t.Rebounds, t.Steals, t.Blocks, t.Turnovers, t.Fouls)...)
	row = append(row, "")
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write csv team row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the box score as an indented JSON document.
func WriteJSON(w io.Writer, s model.ExtractedGameStats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func shootingCells(lines ...model.ShootingLine) []string {
	out := make([]string, 0, len(lines)*3)
	for _, s := range lines {
		out = append(out, strconv.Itoa(s.Made), strconv.Itoa(s.Attempted), FormatPercentage(s))
	}
	return out
}

func ints(vals ...int) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.Itoa(v)
	}
	return out
}
