package service

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// PlayerInput is a roster entry as submitted by a client.
type PlayerInput struct {
	Name         string `json:"name" validate:"required,max=50"`
	JerseyNumber int    `json:"jerseyNumber" validate:"min=1,max=99"`
	Position     string `json:"position" validate:"required"`
}

// CreateSessionInput opens a tagging session for one video.
type CreateSessionInput struct {
	VideoID    string        `json:"videoId" validate:"max=128"`
	PlaylistID string        `json:"playlistId" validate:"max=128"`
	GameNumber *int          `json:"gameNumber" validate:"omitempty,min=1"`
	VideoIndex *int          `json:"videoIndex" validate:"omitempty,min=0"`
	Players    []PlayerInput `json:"players"`
}

// EventInput is a tag request. Player references are roster ids.
type EventInput struct {
	Type              string `json:"type" validate:"required"`
	PlayerID          string `json:"playerId"`
	Points            int    `json:"points"`
	Missed            bool   `json:"missed"`
	AndOne            bool   `json:"andOne"`
	ReboundPlayerID   string `json:"reboundPlayerId"`
	SubstitutionOutID string `json:"substitutionOutId"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structFieldErrors runs tag validation and converts failures to FieldErrors.
func structFieldErrors(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: messageFor(fe)})
	}
	return out
}

// fieldPath drops the root struct name: "CreateSessionInput.players[0].name" -> "players[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		if fe.Kind() == reflect.String {
			return "length must be >= " + fe.Param()
		}
		return "must be >= " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "length must be <= " + fe.Param()
		}
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// normalizePlayer trims input and checks what tags cannot express.
// prefix scopes field names, e.g. "players[2]." for bulk input.
func normalizePlayer(in PlayerInput, prefix string) (model.Player, []FieldError) {
	in.Name = strings.TrimSpace(in.Name)
	pos := model.ParsePosition(in.Position)
	var ferrs []FieldError
	for _, fe := range structFieldErrors(in) {
		fe.Field = prefix + fe.Field
		ferrs = append(ferrs, fe)
	}
	if in.Position != "" && !pos.Valid() {
		ferrs = append(ferrs, FieldError{Field: prefix + "position", Message: "must be one of Guard, Forward, Center"})
	}
	return model.Player{Name: in.Name, JerseyNumber: in.JerseyNumber, Position: pos}, ferrs
}

// jerseyConflict reports a FieldError when number is taken by anyone but exceptID.
func jerseyConflict(roster []model.Player, number int, exceptID, field string) []FieldError {
	for _, p := range roster {
		if p.ID != exceptID && p.JerseyNumber == number {
			return []FieldError{{Field: field, Message: "jersey " + strconv.Itoa(number) + " already taken by " + p.Name}}
		}
	}
	return nil
}

// normalizeEvent checks the request shape before it reaches the session.
func normalizeEvent(in EventInput) (model.EventType, []FieldError) {
	typ := model.EventType(strings.ToLower(strings.TrimSpace(in.Type)))
	ferrs := structFieldErrors(in)
	if in.Type != "" && !typ.Valid() {
		ferrs = append(ferrs, FieldError{Field: "type", Message: "unknown event type"})
	}
	if typ == model.EventShot && (in.Points < model.FreeThrow || in.Points > model.ThreePointer) {
		ferrs = append(ferrs, FieldError{Field: "points", Message: "must be 1, 2 or 3"})
	}
	return typ, ferrs
}
