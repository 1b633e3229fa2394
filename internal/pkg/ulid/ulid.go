// Package ulid идентификаторы уведомлений.
package ulid

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// At ULID с меткой t, в пределах одной миллисекунды значения растут
func At(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
