// Command boxscore prints a save file's timestamps or box score without
// running the service.
//
//	boxscore -format csv game.json
//	boxscore -format timestamps < game.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/session"
	"github.com/maxviazov/hoops-tagging-service/internal/stats"
)

var (
	format = flag.String("format", "csv", "output: timestamps, csv or json")
	all    = flag.Bool("all", false, "include players without stats")
)

func main() {
	flag.Parse()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	in := io.Reader(os.Stdin)
	if path := flag.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Msg("open save file")
		}
		defer f.Close()
		in = f
	}

	if err := run(in, os.Stdout, *format, *all); err != nil {
		log.Fatal().Err(err).Str("format", *format).Msg("boxscore failed")
	}
}

func run(in io.Reader, out io.Writer, format string, all bool) error {
	data, err := model.DecodeSaveData(in)
	if err != nil {
		return err
	}
	sort.SliceStable(data.Events, func(i, j int) bool { return data.Events[i].Timestamp < data.Events[j].Timestamp })
	switch format {
	case "timestamps":
		_, err := io.WriteString(out, session.FormatTimestamps(data.Events))
		return err
	case "csv", "json":
		st := stats.Extract(data.Players, data.Events)
		if !all {
			st.PlayerStats = stats.Contributors(st.PlayerStats)
		}
		if format == "csv" {
			return stats.WriteCSV(out, st)
		}
		return stats.WriteJSON(out, st)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
