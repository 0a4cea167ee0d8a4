// Package guestsearch provides an embedded Go client for the guest-facing
// retrieval engine, for services that want in-process retrieval without the
// HTTP server.
//
// The client owns the whole pipeline: one embedding call per query, a
// permission envelope derived from the guest record, and a concurrent
// fan-out over the knowledge domains the guest may see.
//
//	client, _ := guestsearch.New(ctx,
//	    guestsearch.WithRedis("localhost:6379", ""),
//	    guestsearch.WithOpenAI(apiKey, "", "text-embedding-3-large"),
//	)
//	defer client.Close()
//
//	res, _ := client.Retrieve(ctx, "does my room have a coffee maker", guestsearch.Guest{
//	    TenantID: "tenant-1",
//	    Units:    []guestsearch.Unit{{ID: "unit-42", Name: "Suite 42"}},
//	    Features: map[string]any{"muva_access": true},
//	})
package guestsearch
