package viewmodel

import (
	"errors"
	"fmt"
	"time"

	"rezepte/internal/api"
)

// NoticeLevel grades a notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a non-blocking message for the user.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}

// maxNotices bounds the notice history.
const maxNotices = 20

// describe turns an action failure into a short German message for the UI.
func describe(action string, err error) string {
	var reqErr *api.RequestError
	switch {
	case errors.As(err, &reqErr) && reqErr.Timeout():
		return fmt.Sprintf("%s: Zeitüberschreitung", action)
	case errors.As(err, &reqErr) && reqErr.Status != 0:
		if reqErr.Message != "" {
			return fmt.Sprintf("%s: Server antwortete %d (%s)", action, reqErr.Status, reqErr.Message)
		}
		return fmt.Sprintf("%s: Server antwortete %d", action, reqErr.Status)
	case errors.As(err, &reqErr):
		return fmt.Sprintf("%s: Server nicht erreichbar", action)
	case errors.Is(err, ErrNotLoggedIn):
		return fmt.Sprintf("%s: bitte zuerst einloggen", action)
	case errors.Is(err, ErrEmptyName):
		return fmt.Sprintf("%s: Name fehlt", action)
	}
	return fmt.Sprintf("%s: %v", action, err)
}
