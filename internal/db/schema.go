package db

// jobTable holds one document per job, keyed by job id.
const jobTable = "job"

// SchemaSQL contains the database schema initialization SQL.
// The table is schemaless: documents carry exactly the fields the job
// serializer emits and absent values are stored as NONE.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS job SCHEMALESS;

    -- Ownership queries (ListByUser / ListIDsByUser)
    DEFINE INDEX IF NOT EXISTS job_user ON job FIELDS user;
    DEFINE INDEX IF NOT EXISTS job_status ON job FIELDS status;
`
