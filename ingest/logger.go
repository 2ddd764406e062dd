package ingest

import (
	stdlog "log"
)

var log = stdlog.New(stdlog.Writer(), "[ingest] ", stdlog.LstdFlags)
