package imagevault

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is an event sink that discards all events.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-op event sink
func NewNoopEventSink() *NoopEventSink {
	return &NoopEventSink{}
}

func (s *NoopEventSink) ImageUploaded(ctx context.Context, image *Image) error {
	return nil
}

func (s *NoopEventSink) ImageDeleted(ctx context.Context, imageID uuid.UUID) error {
	return nil
}

// LoggingEventSink writes lifecycle events to a structured logger.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink backed by the given logger. A
// nil logger falls back to slog.Default().
func NewLoggingEventSink(logger *slog.Logger) *LoggingEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (s *LoggingEventSink) ImageUploaded(ctx context.Context, image *Image) error {
	s.logger.InfoContext(ctx, "image uploaded",
		"image_id", image.ID.String(),
		"user_id", image.OwnerID,
		"file_size", image.FileSize,
		"object_key", image.ObjectKey,
	)
	return nil
}

func (s *LoggingEventSink) ImageDeleted(ctx context.Context, imageID uuid.UUID) error {
	s.logger.InfoContext(ctx, "image deleted", "image_id", imageID.String())
	return nil
}
