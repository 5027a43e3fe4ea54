// Package telemetry sets up logging, tracing and metrics for a CLI run.
//
// Every run gets a uuid run id that is attached to all log records and to the
// root span. Logs go through zerolog, spans through OpenTelemetry (exported
// to stdout or an OTLP collector, or kept in-process), and counters through a
// private Prometheus registry that is written to a node exporter textfile at
// shutdown:
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//	op := telemetry.StartOperation(ctx, "validate", telemetry.AttrFile.String(path))
//	err = doValidate(op.Ctx)
//	op.End(err)
package telemetry
