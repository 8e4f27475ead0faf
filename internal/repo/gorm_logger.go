package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which gorm reports a query.
const slowQueryThreshold = 200 * time.Millisecond

// zerologWriter feeds gorm's logger output into a zerolog logger.
type zerologWriter struct {
	l zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.l.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewGormLogger reports SQL errors and slow queries through l. Misses on
// First/Take are expected in the like and session flows and are not logged.
func NewGormLogger(l zerolog.Logger) logger.Interface {
	return logger.New(zerologWriter{l: l}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: NewGormLogger(log.Logger)}
}
