package storage

const schemaSQL = `
-- One row per find404 invocation
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed_url TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL
);

-- Final outcome of every URL visited during a run
-- status holds the HTTP status code or the 'invalid' / 'error' sentinels
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    url TEXT NOT NULL,
    status TEXT NOT NULL,
    status_code INTEGER NOT NULL DEFAULT 0,
    class TEXT NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0 CHECK (size_bytes >= 0),
    referrer TEXT,
    depth INTEGER NOT NULL DEFAULT 0,
    recurse INTEGER NOT NULL DEFAULT 0,
    final_url TEXT,
    anchor_text TEXT,
    elapsed_ms INTEGER,
    ttfb_ms INTEGER,
    dns_ms INTEGER,
    connect_ms INTEGER,
    tls_ms INTEGER,
    detail TEXT,
    UNIQUE(run_id, url)
);

CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
CREATE INDEX IF NOT EXISTS idx_pages_run_class ON pages(run_id, class);

-- View for pages that returned an HTTP error status
CREATE VIEW IF NOT EXISTS broken_pages AS
SELECT
    run_id, url, status_code, referrer, anchor_text, depth
FROM pages
WHERE class = 'http_error';

-- Key-value metadata, e.g. the version of the tool that wrote the database
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
