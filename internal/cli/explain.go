package cli

import (
	"errors"

	"ticketlabeler/internal/domain"
	"ticketlabeler/internal/pipeline"
)

// Explain turns a fatal error into a message saying which dependency
// failed and what to check.
func Explain(err error) string {
	if err == nil {
		return ""
	}
	var pre *pipeline.PreconditionError
	if !errors.As(err, &pre) {
		switch {
		case errors.Is(err, domain.ErrAuth):
			return "The ticket store rejected the configured credentials: " + err.Error()
		case errors.Is(err, domain.ErrConnectivity):
			return "The ticket store could not be reached: " + err.Error()
		}
		return err.Error()
	}

	switch pre.Dependency {
	case pipeline.DependencyStore:
		switch {
		case errors.Is(err, domain.ErrAuth):
			return "The ticket store rejected the configured credentials. Check the email/token (or access token) in the configuration. " + pre.Err.Error()
		case errors.Is(err, domain.ErrConnectivity):
			return "The ticket store could not be reached. Check the server URL and network access. " + pre.Err.Error()
		default:
			return "The ticket store connectivity check failed. " + pre.Err.Error()
		}
	case pipeline.DependencyBackend:
		return "The text generation backend is not available. For Ollama make sure the server is running (ollama serve) and the model is pulled; for hosted providers check the API key. " + pre.Err.Error()
	}
	return err.Error()
}
