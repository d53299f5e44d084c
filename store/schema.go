package store

// schemaSQL holds the DDL for the registry and content tables. The two
// content tables share the same shape; notices and RCP blocks are kept
// apart so a document type can be reloaded without touching the other.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS spec_doc (
    filename TEXT PRIMARY KEY,
    cis TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS specialite (
    cis TEXT PRIMARY KEY,
    is_bdm INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cis_atc (
    cis TEXT PRIMARY KEY,
    atc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notices_content (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cis TEXT NOT NULL,
    parent_id INTEGER REFERENCES notices_content(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    type TEXT,
    tag TEXT,
    content TEXT,
    text TEXT,
    styles TEXT,
    html TEXT
);

CREATE INDEX IF NOT EXISTS idx_notices_content_cis ON notices_content(cis);

CREATE TABLE IF NOT EXISTS rcp_content (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cis TEXT NOT NULL,
    parent_id INTEGER REFERENCES rcp_content(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    type TEXT,
    tag TEXT,
    content TEXT,
    text TEXT,
    styles TEXT,
    html TEXT
);

CREATE INDEX IF NOT EXISTS idx_rcp_content_cis ON rcp_content(cis);
`
