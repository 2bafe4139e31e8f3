// Package trace embeds the trace catalog search in a Go program.
//
// The client loads a catalog once, from a YAML file or from the JSON
// snapshot that trace-seed writes to Redis/Valkey, and answers queries
// in process with the same ranking as the HTTP API.
//
//	client, _ := trace.New(ctx, trace.WithCatalogFile("config/catalog.yaml"))
//	res, _ := client.Search(ctx, trace.Query{Text: "iso 9001", Scope: "standards"})
//	for _, h := range res.Hits {
//	    fmt.Println(h.Score, h.Title)
//	}
package trace
