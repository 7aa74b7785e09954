package apm

type emptyTraceProvider struct{}

// NewEmptyTraceProvider returns a provider that leaves the global no-op
// tracer untouched.
func NewEmptyTraceProvider() TraceProvider {
	return emptyTraceProvider{}
}

func (emptyTraceProvider) Stop() error {
	return nil
}
