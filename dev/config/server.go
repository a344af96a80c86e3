package config

const SERVER_YML = `
contactspro:
  cron:
    timeZone: "America/Toronto"
    repairSchedule: "0 * * * *"
  listener:
    port: 5000
  cors:
    allowedOrigins:
      - "http://localhost:5173"
      - "http://localhost:3000"
      - "http://localhost:4200"
  ingest:
    concurrency: 4

sqlite:
  passPhrase:

google:
  storage:
    bucket: "contactspro"
    prefix: "contactspro-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: false
  applicationCredentials:
`
