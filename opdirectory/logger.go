package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

var (
	InfoLog    *log.Logger
	WarnLog    *log.Logger
	ErrorLog   *log.Logger
	VerboseLog *log.Logger
	DebugLog   *log.Logger
	GinLog     *log.Logger
)

const prodLogFile = "/var/log/opdirectory/log.txt"

// Lines come out as "<date> <time> [LEVEL] - <message>". The file handle is
// held for the life of the process; if it cannot be opened we keep running
// on the console alone.
func initLogger() {
	logPath := prodLogFile
	if !env.Production {
		logPath, _ = filepath.Abs("./opdirectory/log/log.txt")
	}

	var sink io.Writer = os.Stdout

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Println("could not create log directory, console only: ", err)
	} else {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Println("could not open log file, console only: ", err)
		} else {
			sink = io.MultiWriter(f, os.Stdout)
		}
	}

	flags := log.Ldate | log.Ltime | log.Lmsgprefix

	InfoLog = log.New(sink, "[INFO] - ", flags)
	WarnLog = log.New(sink, "[WARN] - ", flags)
	ErrorLog = log.New(sink, "[ERROR] - ", flags)
	VerboseLog = log.New(sink, "[VERBOSE] - ", flags)
	DebugLog = log.New(sink, "[DEBUG] - ", flags)
	GinLog = log.New(sink, "", log.Ltime)

	if !env.Production {
		DebugLog.Println("logger running in dev mode, file: ", logPath)
	}
}
