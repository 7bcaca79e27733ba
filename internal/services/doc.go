// Package services implements the business logic shared by the CLI and the
// HTTP API.
//
// # Available Services
//
//	- ValidationService: loads a dataset, reloads the metric catalog and runs
//	  every quality check, returning a report.Report
//	- HealthService: reports process health; degraded when the catalog
//	  cannot be loaded
//
// # Validation Flow
//
//	svc := services.NewValidationService(cfg.Validation,
//	    catalog.FileSource{Path: paths.CatalogFile}, logger,
//	    services.WithQualityMetrics(metrics),
//	    services.WithTracer(providers.Tracer))
//
//	rep, err := svc.ValidateFile(ctx, "data/metrics.csv", "")
//
// Each run fans verdicts out to an in-memory collector, the structured
// logger and, when configured, the OpenTelemetry instruments.
//
// # Error Handling
//
// Input problems (missing catalog, unreadable dataset, absent asset or time
// column) are returned as *errors.AppError values. Data-quality findings
// never produce an error; they are fail verdicts in the report.
package services
