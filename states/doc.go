// Package states tracks the live state of entities in the home.
//
// The entity registry records what exists; this package records what is
// currently running. Helper entities, template sensors, and MQTT
// discoveries often carry a live state without a registry entry, so
// diagnostics consult both sources before declaring an entity unknown.
//
// States live in a single Redis hash keyed by entity ID:
//   - hearthwatch:states - Hash of entity ID to JSON state document
//
// The RedisClient is the production implementation. MemoryClient backs
// tests and single-binary setups.
//
// # Usage
//
//	client, err := states.NewRedisClient(states.RedisOptions{
//		URL: "redis://localhost:6379",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Set(ctx, states.NewState("light.kitchen", "on"))
//
//	ids, err := client.EntityIDs(ctx)
//	for _, id := range ids {
//		fmt.Println(id)
//	}
package states
