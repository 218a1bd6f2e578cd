package outbox

const recordLoggedSchema = `{
  "type": "object",
  "title": "RecordLogged",
  "properties": {
    "record_id": {"type": "string"},
    "user_id": {"type": "string"},
    "record_type": {"type": "string"},
    "date": {"type": "string", "format": "date-time"},
    "value": {"type": "integer"},
    "extra": {"type": "integer"}
  },
  "required": ["record_id", "user_id", "record_type", "date", "value"],
  "additionalProperties": false
}`

const challengeCompletedSchema = `{
  "type": "object",
  "title": "ChallengeCompleted",
  "properties": {
    "challenge_id": {"type": "string"},
    "user_id": {"type": "string"},
    "kind": {"type": "string"},
    "target": {"type": "integer"},
    "exp_reward": {"type": "integer"},
    "completed_at": {"type": "string", "format": "date-time"}
  },
  "required": ["challenge_id", "user_id", "kind", "target", "exp_reward", "completed_at"],
  "additionalProperties": false
}`

const levelUpSchema = `{
  "type": "object",
  "title": "LevelUp",
  "properties": {
    "user_id": {"type": "string"},
    "level": {"type": "integer"},
    "levels_gained": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "level", "levels_gained", "occurred_at"],
  "additionalProperties": false
}`
