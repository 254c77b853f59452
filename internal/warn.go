package internal

import (
	"context"
	"log/slog"
)

// WarnUnstable records a call to an operation whose upstream behaviour is not
// settled.
func WarnUnstable(ctx context.Context, logger *slog.Logger, operation, note string) {
	if logger == nil {
		return
	}
	attrs := []any{"operation", operation, "stability", "unstable"}
	if note != "" {
		attrs = append(attrs, "note", note)
	}
	logger.WarnContext(ctx, operation+" is unstable", attrs...)
}

// WarnDeprecated records a call to a deprecated operation and names its
// replacement when there is one.
func WarnDeprecated(ctx context.Context, logger *slog.Logger, operation, instead string) {
	if logger == nil {
		return
	}
	attrs := []any{"operation", operation, "stability", "deprecated"}
	msg := operation + " is deprecated"
	if instead != "" {
		attrs = append(attrs, "instead", instead)
		msg += ", use " + instead + " instead"
	}
	logger.WarnContext(ctx, msg, attrs...)
}
