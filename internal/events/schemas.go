package events

const activityLoggedSchema = `{
  "type": "object",
  "title": "ActivityLogged",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "string"},
    "activity_name": {"type": "string"},
    "category": {"type": "string"},
    "difficulty": {"type": "string", "enum": ["Easy", "Moderate", "Hard"]},
    "duration_min": {"type": "integer"},
    "calories_burned": {"type": "integer"},
    "date": {"type": "string", "format": "date"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "activity_name", "category", "difficulty", "duration_min", "calories_burned", "date", "occurred_at"],
  "additionalProperties": false
}`

const activityUpdatedSchema = `{
  "type": "object",
  "title": "ActivityUpdated",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "string"},
    "activity_name": {"type": "string"},
    "category": {"type": "string"},
    "difficulty": {"type": "string", "enum": ["Easy", "Moderate", "Hard"]},
    "duration_min": {"type": "integer"},
    "calories_burned": {"type": "integer"},
    "date": {"type": "string", "format": "date"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "occurred_at"],
  "additionalProperties": false
}`

const activityDeletedSchema = `{
  "type": "object",
  "title": "ActivityDeleted",
  "properties": {
    "activity_id": {"type": "integer"},
    "user_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "occurred_at"],
  "additionalProperties": false
}`

const bookmarkToggledSchema = `{
  "type": "object",
  "title": "BookmarkToggled",
  "properties": {
    "user_id": {"type": "string"},
    "workout_id": {"type": "integer"},
    "action": {"type": "string", "enum": ["added", "removed"]},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "workout_id", "action", "occurred_at"],
  "additionalProperties": false
}`
