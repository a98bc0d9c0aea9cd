package logging

import (
	"context"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	RootModule      = "publisher"
	AuthModule      = "publisher.auth"
	UploadModule    = "publisher.upload"
	DraftsModule    = "publisher.drafts"
	TransportModule = "publisher.transport"
	ThemesModule    = "publisher.themes"
	DiagramsModule  = "publisher.diagrams"
	DatacubeModule  = "publisher.datacube"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = RootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RootLogger returns the logger namespace used by the client facade.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, RootModule)
}

// AuthLogger returns the logger namespace reserved for credential handling.
func AuthLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, AuthModule)
}

// UploadLogger returns the logger namespace reserved for the upload pipeline.
func UploadLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, UploadModule)
}

// DraftsLogger returns the logger namespace reserved for draft management.
func DraftsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, DraftsModule)
}

// TransportLogger returns the logger namespace reserved for platform calls.
func TransportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, TransportModule)
}

// ThemesLogger returns the logger namespace reserved for HTML rendering.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ThemesModule)
}

// DiagramsLogger returns the logger namespace reserved for diagram rendering.
func DiagramsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, DiagramsModule)
}

// DatacubeLogger returns the logger namespace reserved for statistics calls.
func DatacubeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, DatacubeModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

// Ensure returns logger, or a no-op logger when it is nil.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
