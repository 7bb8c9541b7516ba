package file

import "os"

// EnvOverrides maps environment variables to the config keys they override.
var EnvOverrides = map[string]string{
	"MEILISEARCH_HOST":    "search.host",
	"MEILISEARCH_API_KEY": "search.api_key",
	"DOCSYNC_ENGINE":      "search.engine",
	"DOCSYNC_INDEX":       "search.index",
	"ENRICHMENT_BASE_URL": "enrichment.base_url",
	"ENRICHMENT_TOKEN":    "enrichment.token",
	"DOCSYNC_DATA_DIR":    "data_dir",
	"DOCSYNC_ADDR":        "server.addr",
	"DOCSYNC_MCP_ADDR":    "server.mcp_addr",
}

// readEnv returns the overrides present in the environment.
func readEnv(lookup func(string) (string, bool)) map[string]any {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	out := make(map[string]any)
	for env, key := range EnvOverrides {
		if v, ok := lookup(env); ok && v != "" {
			out[key] = v
		}
	}
	return out
}
