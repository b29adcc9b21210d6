// Package recordstore persists request records in a relational table so they
// can be queried by trace ID after the fact.
//
// Records are queued by Log and written in batches by a background collector,
// either when a batch fills up or when the flush interval elapses. The same
// Store works against PostgreSQL and MariaDB/MySQL through gorm; the driver is
// chosen by Config.Driver.
//
//	store, err := recordstore.NewStore(recordstore.Config{
//	    Driver: recordstore.DriverPostgres,
//	    Connection: recordstore.Connection{
//	        Host: "localhost", Port: "5432", User: "trace", DbName: "traces", SSLMode: "disable",
//	    },
//	    AutoMigrate: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close(context.Background())
//
//	records, err := store.FindByTrace(ctx, traceID)
package recordstore
