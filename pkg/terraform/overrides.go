package terraform

import (
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

// setting is one connector-specific key and its generated value.
type setting struct {
	key   string
	value hcldoc.Expression
}

func lit(key, value string) setting {
	return setting{key: key, value: str(value)}
}

func ref(key string, f catalog.DataFormat) setting {
	return setting{key: key, value: formatRef(f)}
}

// overridesFor returns the additional settings generated for a connector.
// Connectors without an entry get none. Add a connector by adding a case.
func overridesFor(opts GenerationOptions) []setting {
	switch opts.Connector.Name {
	case "PostgresCdcSourceV2":
		return []setting{
			lit("database.hostname", "<REPLACE_WITH_DATABASE_HOST>"),
			lit("database.port", "5432"),
			lit("database.user", "<REPLACE_WITH_DATABASE_USER>"),
			lit("database.dbname", "<REPLACE_WITH_DATABASE_NAME>"),
			lit("database.sslmode", "require"),
			lit("publication.name", "dbz_publication"),
			lit("publication.autocreate.mode", "filtered"),
			lit("snapshot.mode", "initial"),
			lit("tombstones.on.delete", "true"),
			lit("plugin.name", "pgoutput"),
			lit("slot.name", "dbz"),
			lit("poll.interval.ms", "1000"),
			lit("max.batch.size", "1000"),
			lit("event.processing.failure.handling.mode", "fail"),
			lit("heartbeat.interval.ms", "0"),
			lit("provide.transaction.metadata", "false"),
			lit("decimal.handling.mode", "precise"),
			lit("binary.handling.mode", "bytes"),
			lit("time.precision.mode", "adaptive"),
			lit("cleanup.policy", "delete"),
			lit("hstore.handling.mode", "json"),
			lit("interval.handling.mode", "numeric"),
			lit("schema.refresh.mode", "columns_diff"),
			lit("after.state.only", "false"),
			ref("output.key.format", catalog.Avro),
		}

	case "MySqlCdcSourceV2":
		return []setting{
			lit("database.server.name", "<REPLACE_WITH_SERVER_NAME>"),
			lit("database.ssl.mode", "preferred"),
			lit("snapshot.mode", "initial"),
			lit("binlog.buffer.size", "8192"),
			lit("max.batch.size", "2048"),
			lit("max.queue.size", "8192"),
			lit("poll.interval.ms", "1000"),
			lit("connect.timeout.ms", "30000"),
			lit("socket.timeout.ms", "30000"),
			lit("heartbeat.interval.ms", "0"),
			lit("provide.transaction.metadata", "false"),
			lit("decimal.handling.mode", "precise"),
			lit("bigint.unsigned.handling.mode", "long"),
			lit("binary.handling.mode", "bytes"),
			lit("time.precision.mode", "adaptive"),
			lit("cleanup.policy", "delete"),
			lit("schema.refresh.mode", "columns_diff"),
			lit("after.state.only", "false"),
			ref("output.key.format", catalog.Avro),
		}

	case "S3_SINK":
		return []setting{
			lit("s3.bucket.name", "<REPLACE_WITH_BUCKET_NAME>"),
			lit("s3.wan.mode", "false"),
			ref("input.data.format", opts.inputFormat(catalog.Avro)),
			ref("output.data.format", opts.outputFormat(catalog.Parquet)),
			lit("topics.dir", "<REPLACE_WITH_TOPICS_DIR>"),
			lit("path.format", "'effective_date'=YYYY-MM-dd"),
			lit("time.interval", "HOURLY"),
			lit("rotate.schedule.interval.ms", "3600000"),
			lit("rotate.interval.ms", "3600000"),
			lit("flush.size", "100000"),
			lit("compression.codec", "PARQUET - gzip"),
			lit("s3.compression.level", "6"),
			lit("s3.part.size", "5242880"),
			lit("kafka.max.partition.validation.disable", "false"),
		}

	case "PostgreSQLSource":
		return append(jdbcConnection("5432", "prefer"), jdbcSourcePolling()...)

	case "MySQLSource":
		return append(jdbcConnection("3306", "preferred"), jdbcSourcePolling()...)

	case "PostgresSink":
		return append(jdbcConnection("5432", "prefer"), jdbcSinkWrites()...)

	case "MySQLSink":
		return append(jdbcConnection("3306", "preferred"), jdbcSinkWrites()...)

	default:
		return nil
	}
}

func jdbcConnection(port, sslMode string) []setting {
	return []setting{
		lit("connection.host", "<REPLACE_WITH_DB_HOST>"),
		lit("connection.port", port),
		lit("connection.user", "<REPLACE_WITH_DB_USER>"),
		lit("db.name", "<REPLACE_WITH_DB_NAME>"),
		lit("ssl.mode", sslMode),
	}
}

func jdbcSourcePolling() []setting {
	return []setting{
		lit("table.whitelist", "<REPLACE_WITH_TABLE_LIST>"),
		lit("mode", "timestamp"),
		lit("poll.interval.ms", "5000"),
		lit("db.timezone", "UTC"),
		lit("table.types", "TABLE"),
	}
}

func jdbcSinkWrites() []setting {
	return []setting{
		lit("insert.mode", "UPSERT"),
		lit("table.name.format", "<REPLACE_WITH_TABLE_FORMAT>"),
		lit("table.types", "TABLE"),
		lit("db.timezone", "UTC"),
		lit("pk.mode", "record_value"),
		lit("pk.fields", "<REPLACE_WITH_PK_FIELDS>"),
		lit("auto.create", "false"),
		lit("auto.evolve", "false"),
		lit("batch.sizes", "5000"),
		lit("max.poll.records", "2500"),
	}
}

func applyOverrides(obj *hcldoc.Object, opts GenerationOptions) {
	for _, st := range overridesFor(opts) {
		obj.Set(hcldoc.Key(st.key), st.value)
	}
}
