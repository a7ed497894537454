package storage

const schema = `
-- A deck is one imported markdown file, matched by title on re-import.
CREATE TABLE IF NOT EXISTS deck (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL UNIQUE,
    source_file  TEXT NOT NULL,
    created_at   TEXT NOT NULL,
    last_studied TEXT
);

-- Categories are rebuilt wholesale on every import; their ids are not
-- stable across imports and must never be cached by callers.
CREATE TABLE IF NOT EXISTS category (
    id          TEXT PRIMARY KEY,
    deck_id     TEXT NOT NULL REFERENCES deck(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    order_index INTEGER NOT NULL DEFAULT 0
);

-- Front text is the reconciliation key: unique per deck.
CREATE TABLE IF NOT EXISTS card (
    id          TEXT PRIMARY KEY,
    deck_id     TEXT NOT NULL REFERENCES deck(id) ON DELETE CASCADE,
    category_id TEXT REFERENCES category(id) ON DELETE SET NULL,
    front       TEXT NOT NULL,
    back        TEXT NOT NULL,
    created_at  TEXT NOT NULL,

    UNIQUE(deck_id, front)
);

-- One SM-2 progress row per card, created with the card and cascading away
-- with it. due_date is a YYYY-MM-DD string compared lexically.
CREATE TABLE IF NOT EXISTS card_progress (
    id            TEXT PRIMARY KEY,
    card_id       TEXT NOT NULL UNIQUE REFERENCES card(id) ON DELETE CASCADE,
    easiness      REAL NOT NULL DEFAULT 2.5,
    interval      INTEGER NOT NULL DEFAULT 0,
    repetitions   INTEGER NOT NULL DEFAULT 0,
    due_date      TEXT NOT NULL,
    last_reviewed TEXT,
    last_rating   INTEGER
);
`
