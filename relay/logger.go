package relay

import (
	stdlog "log"
)

var log = stdlog.New(stdlog.Writer(), "[relay] ", stdlog.LstdFlags)
