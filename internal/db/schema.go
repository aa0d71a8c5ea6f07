package db

// SchemaVersion is the current database schema version
const SchemaVersion = 1

const schema = `
-- Bundles group applications (e.g. "rhel")
CREATE TABLE IF NOT EXISTS bundles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL
);

-- Applications belong to a bundle
CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    bundle_id TEXT NOT NULL,
    name TEXT NOT NULL,
    display_name TEXT NOT NULL,
    UNIQUE (bundle_id, name),
    FOREIGN KEY (bundle_id) REFERENCES bundles(id)
);

-- Event types are the editable notifications
CREATE TABLE IF NOT EXISTS event_types (
    id TEXT PRIMARY KEY,
    application_id TEXT NOT NULL,
    name TEXT NOT NULL,
    display_name TEXT NOT NULL,
    description TEXT DEFAULT '',
    UNIQUE (application_id, name),
    FOREIGN KEY (application_id) REFERENCES applications(id)
);

-- Behavior per event type; actions hold the wire form as JSON
CREATE TABLE IF NOT EXISTS event_type_behaviors (
    event_type_id TEXT PRIMARY KEY,
    use_default INTEGER NOT NULL DEFAULT 1,
    actions TEXT NOT NULL DEFAULT '[]',
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (event_type_id) REFERENCES event_types(id)
);

-- Bundle-wide default actions
CREATE TABLE IF NOT EXISTS default_behaviors (
    bundle_id TEXT PRIMARY KEY,
    actions TEXT NOT NULL DEFAULT '[]',
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (bundle_id) REFERENCES bundles(id)
);

-- Named reusable action lists
CREATE TABLE IF NOT EXISTS behavior_groups (
    id TEXT PRIMARY KEY,
    bundle_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    actions TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (bundle_id) REFERENCES bundles(id)
);

-- External delivery endpoints
CREATE TABLE IF NOT EXISTS integrations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'webhook',
    url TEXT NOT NULL,
    secret TEXT DEFAULT '',
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Delivery history per integration
CREATE TABLE IF NOT EXISTS connection_attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    integration_id TEXT NOT NULL,
    type TEXT NOT NULL,
    detail TEXT DEFAULT '',
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Known recipients offered as email subscription suggestions
CREATE TABLE IF NOT EXISTS recipients (
    name TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_bundle ON applications(bundle_id);
CREATE INDEX IF NOT EXISTS idx_event_types_application ON event_types(application_id);
CREATE INDEX IF NOT EXISTS idx_behavior_groups_bundle ON behavior_groups(bundle_id);
CREATE INDEX IF NOT EXISTS idx_attempts_integration ON connection_attempts(integration_id, timestamp);
`
