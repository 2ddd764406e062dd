package websocket

import (
	stdlog "log"
)

var log = stdlog.New(stdlog.Writer(), "[websocket] ", stdlog.LstdFlags)
