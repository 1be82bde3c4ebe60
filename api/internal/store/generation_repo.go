package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

// Record: одна успешная генерация.
type Record struct {
	BotID     string
	Email     string
	Message   string
	ImagePath string
	Context   any // scene context, хранится как jsonb
}

type GenerationRepo struct{ DB *sql.DB }

func NewGenerationRepo(db *sql.DB) *GenerationRepo { return &GenerationRepo{DB: db} }

const schema = `
create table if not exists generations (
  id          bigserial primary key,
  created_at  timestamptz not null default now(),
  bot_id      text not null,
  email       text not null,
  message     text not null,
  image_path  text not null,
  context     jsonb not null
);
create index if not exists generations_email_created_idx on generations (email, created_at);`

func (r *GenerationRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *GenerationRepo) Insert(ctx context.Context, rec Record) error {
	js, err := json.Marshal(rec.Context)
	if err != nil {
		return err
	}
	const q = `
insert into generations (bot_id, email, message, image_path, context)
values ($1,$2,$3,$4,$5)`
	_, err = r.DB.ExecContext(ctx, q, rec.BotID, rec.Email, rec.Message, rec.ImagePath, js)
	return err
}
