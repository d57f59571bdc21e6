// Package config defines the route-table configuration of the router,
// loads it from YAML with ${VAR:-default} substitution, validates it,
// and watches the file for hot reload.
//
// A minimal table:
//
//	server:
//	  address: ":8080"
//	routes:
//	  - name: sloths
//	    methods: [GET]
//	    path: /sloths
//	    handlers:
//	      - type: text
//	        body: "Hello sloths!"
//
// Load and validate:
//
//	cfg, err := config.LoadConfig("configs/avarouter.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    log.Fatal(err)
//	}
package config
