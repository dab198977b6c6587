package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// DefaultServiceVersion is reported when no version is configured
const DefaultServiceVersion = "1.0.0"

// newResource describes this service to every exporter
func newResource(serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceVersion == "" {
		serviceVersion = DefaultServiceVersion
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
