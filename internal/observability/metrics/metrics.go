package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes membership-level instruments.
type Metrics struct {
	invitesSent     metric.Int64Counter
	invitesAccepted metric.Int64Counter
	membersJoined   metric.Int64Counter
	membersLeft     metric.Int64Counter
	orgsCreated     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the membership metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tenantry"
	}
	meter := provider.Meter(name)

	invitesSent, err := meter.Int64Counter("tenantry_invites_sent_total")
	if err != nil {
		return nil, err
	}
	invitesAccepted, err := meter.Int64Counter("tenantry_invites_accepted_total")
	if err != nil {
		return nil, err
	}
	membersJoined, err := meter.Int64Counter("tenantry_members_joined_total")
	if err != nil {
		return nil, err
	}
	membersLeft, err := meter.Int64Counter("tenantry_members_left_total")
	if err != nil {
		return nil, err
	}
	orgsCreated, err := meter.Int64Counter("tenantry_organizations_created_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invitesSent:     invitesSent,
		invitesAccepted: invitesAccepted,
		membersJoined:   membersJoined,
		membersLeft:     membersLeft,
		orgsCreated:     orgsCreated,
	}, nil
}

// RecordInviteSent increments invitation send counts.
func (m *Metrics) RecordInviteSent(ctx context.Context, orgID string, newUser bool) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.Bool("new_user", newUser),
	}
	m.invitesSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInviteAccepted increments invitation acceptance counts.
func (m *Metrics) RecordInviteAccepted(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.invitesAccepted.Add(ctx, 1, metric.WithAttributes(attribute.String("org_id", strings.TrimSpace(orgID))))
}

// RecordMemberJoined increments membership creation counts.
func (m *Metrics) RecordMemberJoined(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.membersJoined.Add(ctx, 1, metric.WithAttributes(attribute.String("org_id", strings.TrimSpace(orgID))))
}

// RecordMemberLeft increments membership removal counts.
func (m *Metrics) RecordMemberLeft(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.membersLeft.Add(ctx, 1, metric.WithAttributes(attribute.String("org_id", strings.TrimSpace(orgID))))
}

// RecordOrganizationCreated increments organization creation counts.
func (m *Metrics) RecordOrganizationCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.orgsCreated.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
