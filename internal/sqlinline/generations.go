package sqlinline

const QEnsureGenerationsSchema = `--sql 8bccf7ce-3a5b-4e66-b86c-26be57931805
create table if not exists generations (
  id uuid primary key,
  user_id text not null,
  script text not null,
  platform text not null,
  template_id text not null,
  music_style text not null,
  voice_style text not null,
  tier text not null default 'free',
  video_key text not null,
  thumbnail_key text not null default '',
  duration_ms double precision not null default 0,
  properties jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now()
);
create index if not exists generations_user_created_idx on generations (user_id, created_at desc);
`

const QInsertGeneration = `--sql e24a344c-8d55-4c3e-a6ff-2e21cc696f99
insert into generations (
  id, user_id, script, platform, template_id, music_style, voice_style,
  tier, video_key, thumbnail_key, duration_ms, properties, created_at
)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
on conflict (id) do update set
  video_key = excluded.video_key,
  thumbnail_key = excluded.thumbnail_key,
  duration_ms = excluded.duration_ms,
  properties = excluded.properties;
`

const QListGenerationsByUser = `--sql d85f456b-f4d8-46f8-b324-ca54273fffcc
select
  id::text, user_id, script, platform, template_id, music_style, voice_style,
  tier, video_key, thumbnail_key, duration_ms, properties, created_at
from generations
where user_id = $1
order by created_at desc
limit $2;
`

// SQLite variants keep the same column layout without Postgres casts.
const (
	SQLiteEnsureGenerationsSchema = `
create table if not exists generations (
  id text primary key,
  user_id text not null,
  script text not null,
  platform text not null,
  template_id text not null,
  music_style text not null,
  voice_style text not null,
  tier text not null default 'free',
  video_key text not null,
  thumbnail_key text not null default '',
  duration_ms real not null default 0,
  properties text not null default '{}',
  created_at text not null
);
create index if not exists generations_user_created_idx on generations (user_id, created_at desc);
`

	SQLiteInsertGeneration = `
insert into generations (
  id, user_id, script, platform, template_id, music_style, voice_style,
  tier, video_key, thumbnail_key, duration_ms, properties, created_at
)
values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (id) do update set
  video_key = excluded.video_key,
  thumbnail_key = excluded.thumbnail_key,
  duration_ms = excluded.duration_ms,
  properties = excluded.properties
`

	SQLiteListGenerationsByUser = `
select
  id, user_id, script, platform, template_id, music_style, voice_style,
  tier, video_key, thumbnail_key, duration_ms, properties, created_at
from generations
where user_id = ?
order by created_at desc
limit ?
`
)
