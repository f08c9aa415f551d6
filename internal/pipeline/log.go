package pipeline

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("swpipe.pipeline")

// LogOutcome renders a PipelineLoop result as a single structured log line
// under tag. Its signature differs from AddPipeliningPattern's log callback,
// so a caller wires it in by calling it from inside that callback.
func LogOutcome(tag string, result Result) {
	switch r := result.(type) {
	case *NewLoop:
		log.Infof("%s: pipelined loop into kernel with %d carried results", tag, len(r.Results))
	case NotApplicable:
		log.Debugf("%s: not applicable: %s", tag, r.Reason)
	case *DiagnosticResult:
		log.Warningf("%s: refused [%s]: %s", tag, r.Diagnostic.Code, r.Diagnostic.Message)
	}
}
