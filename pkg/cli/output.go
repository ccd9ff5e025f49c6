package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"packpipe/pkg/conflict"
	"packpipe/pkg/loader"
	"packpipe/pkg/pipeline"
	"packpipe/pkg/registry"
)

// emitJSON writes one line-delimited JSON event for scripting consumers.
func emitJSON(w io.Writer, event string, fields map[string]any) {
	payload := map[string]any{"event": event}
	for k, v := range fields {
		payload[k] = v
	}
	blob, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(w, `{"event":"error","error":%q}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(w, string(blob))
}

// hint derives the one contextual line printed under an error.
func hint(err error, reg *registry.Registry) string {
	var ve *pipeline.ValidationError
	var upe *pipeline.UnsupportedPlatformError
	var ame *pipeline.AlgorithmMismatchError
	var cie *pipeline.CorruptInputError
	var lf *loader.LoadFailure
	var ee *conflict.ExhaustedError

	switch {
	case errors.As(err, &ve):
		if reg == nil {
			return ""
		}
		if strings.Contains(ve.Reason, "archive") {
			return "supported archive formats are: " + strings.Join(reg.Archives(), ", ")
		}
		return "supported algorithms are: " + strings.Join(reg.Compressions(), ", ")
	case errors.As(err, &upe):
		if reg == nil {
			return ""
		}
		return fmt.Sprintf("available on %s: %s", reg.Platform(),
			strings.Join(reg.Compressions(), ", "))
	case errors.As(err, &ame):
		if ame.Detected != "" {
			return "re-run with --algo " + ame.Detected
		}
		return "check that the input was produced with the declared algorithm"
	case errors.As(err, &cie):
		return "the input is truncated or was not produced by this tool"
	case errors.As(err, &lf):
		return "no implementation could be loaded for this algorithm on this platform"
	case errors.As(err, &ee):
		return "clean up the numbered copies in the output directory and retry"
	}
	return ""
}
