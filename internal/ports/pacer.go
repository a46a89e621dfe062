package ports

// Pacer spaces driver commands so the driver's command buffer is not overrun.
// Pace is called after each command of a paced sequence with the sink that
// received it.
type Pacer interface {
	Pace(sink ByteSink) error
}
