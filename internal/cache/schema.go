package cache

// Every cache table is keyed by cache_key. cached_at is a unix timestamp in
// seconds. ttl_seconds shortens the configured TTL for one row; 0 leaves it
// alone. Short-lived "not found" entries use it.

// DatasheetCacheTable caches datasheet lookups keyed by normalized MPN and
// manufacturer.
const DatasheetCacheTable = "datasheet_cache"

const datasheetCacheSchema = `
CREATE TABLE IF NOT EXISTS datasheet_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data BLOB NOT NULL,
	cached_at INTEGER NOT NULL,
	ttl_seconds INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_datasheet_cache_cached_at ON datasheet_cache(cached_at);
`

// schemas are applied in order by Open.
var schemas = []string{datasheetCacheSchema}

// SourceTables maps the source names accepted by the cache commands to
// tables. It doubles as the whitelist for table names interpolated into SQL.
var SourceTables = map[string]string{
	"datasheet": DatasheetCacheTable,
}

func knownTable(table string) bool {
	for _, t := range SourceTables {
		if t == table {
			return true
		}
	}
	return false
}
