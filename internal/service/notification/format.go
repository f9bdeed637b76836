package notification

import "time"

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
