// Package logger はlogrusベースの構造化ロガーを生成する。
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New は指定レベルのJSONロガーを標準出力向けに生成する。
// 不正なレベルはinfoとして扱う。
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput は出力先を指定してロガーを生成する。
func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	return log
}

// Discard は何も出力しないロガーを返す。テストや既定値として使う。
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
