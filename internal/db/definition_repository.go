package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/udisondev/gas/internal/data"
)

// Querier — подмножество pgxpool.Pool, нужное репозиториям.
// Его реализуют *pgxpool.Pool и pgxmock.PgxPoolIface.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DefinitionRepository хранит определения атрибутов, эффектов и способностей.
type DefinitionRepository struct {
	db Querier
}

// NewDefinitionRepository создаёт новый DefinitionRepository.
func NewDefinitionRepository(db Querier) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

const (
	selectAttributes = `
		SELECT id, name, description, default_value, min_value, max_value,
		       regeneration, regen_rate, regen_delay
		FROM attribute_definitions
		ORDER BY position`

	selectEffects = `
		SELECT id, name, description, kind, params, duration, can_stack, max_stacks, granted_tags
		FROM effect_definitions
		ORDER BY position`

	selectAbilities = `
		SELECT id, name, description, cooldown, cast_time, can_cast_while_moving, interruptible,
		       cost, cost_attribute, targeting, dimension, use_range_check, max_range, radius,
		       targetable_layers, occlusion_layers, effects, ability_tags, required_tags,
		       blocked_by_tags, target_required_tags, target_blocked_by_tags
		FROM ability_definitions
		ORDER BY position`

	insertAttribute = `
		INSERT INTO attribute_definitions
			(id, position, name, description, default_value, min_value, max_value,
			 regeneration, regen_rate, regen_delay)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertEffect = `
		INSERT INTO effect_definitions
			(id, position, name, description, kind, params, duration, can_stack, max_stacks, granted_tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertAbility = `
		INSERT INTO ability_definitions
			(id, position, name, description, cooldown, cast_time, can_cast_while_moving, interruptible,
			 cost, cost_attribute, targeting, dimension, use_range_check, max_range, radius,
			 targetable_layers, occlusion_layers, effects, ability_tags, required_tags,
			 blocked_by_tags, target_required_tags, target_blocked_by_tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		        $19, $20, $21, $22, $23)`
)

// Load загружает все определения в порядке их сохранения.
func (r *DefinitionRepository) Load(ctx context.Context) (data.Document, error) {
	var doc data.Document

	attrs, err := r.loadAttributes(ctx)
	if err != nil {
		return doc, err
	}
	effects, err := r.loadEffects(ctx)
	if err != nil {
		return doc, err
	}
	abilities, err := r.loadAbilities(ctx)
	if err != nil {
		return doc, err
	}

	doc.Attributes = attrs
	doc.Effects = effects
	doc.Abilities = abilities

	slog.Info("loaded definitions from database",
		"attributes", len(attrs),
		"effects", len(effects),
		"abilities", len(abilities))
	return doc, nil
}

func (r *DefinitionRepository) loadAttributes(ctx context.Context) ([]data.AttributeDoc, error) {
	rows, err := r.db.Query(ctx, selectAttributes)
	if err != nil {
		return nil, fmt.Errorf("querying attribute definitions: %w", err)
	}
	defer rows.Close()

	var out []data.AttributeDoc
	for rows.Next() {
		var a data.AttributeDoc
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Default, &a.Min, &a.Max,
			&a.Regeneration, &a.RegenRate, &a.RegenDelay); err != nil {
			return nil, fmt.Errorf("scanning attribute row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attribute rows: %w", err)
	}
	return out, nil
}

func (r *DefinitionRepository) loadEffects(ctx context.Context) ([]data.EffectDoc, error) {
	rows, err := r.db.Query(ctx, selectEffects)
	if err != nil {
		return nil, fmt.Errorf("querying effect definitions: %w", err)
	}
	defer rows.Close()

	var out []data.EffectDoc
	for rows.Next() {
		var (
			e      data.EffectDoc
			params []byte
			tags   []string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Kind, &params,
			&e.Duration, &e.CanStack, &e.MaxStacks, &tags); err != nil {
			return nil, fmt.Errorf("scanning effect row: %w", err)
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &e.Params); err != nil {
				return nil, fmt.Errorf("decoding params of effect %s: %w", e.ID, err)
			}
		}
		if len(e.Params) == 0 {
			e.Params = nil
		}
		e.GrantedTags = nilIfEmpty(tags)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating effect rows: %w", err)
	}
	return out, nil
}

func (r *DefinitionRepository) loadAbilities(ctx context.Context) ([]data.AbilityDoc, error) {
	rows, err := r.db.Query(ctx, selectAbilities)
	if err != nil {
		return nil, fmt.Errorf("querying ability definitions: %w", err)
	}
	defer rows.Close()

	var out []data.AbilityDoc
	for rows.Next() {
		var (
			a                                  data.AbilityDoc
			targetable, occlusion              int64
			effects, abilityTags, requiredTags []string
			blocked, targetRequired            []string
			targetBlocked                      []string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Cooldown, &a.CastTime,
			&a.CanCastWhileMoving, &a.Interruptible, &a.Cost, &a.CostAttribute,
			&a.Targeting, &a.Dimension, &a.UseRangeCheck, &a.Range, &a.Radius,
			&targetable, &occlusion, &effects, &abilityTags, &requiredTags,
			&blocked, &targetRequired, &targetBlocked); err != nil {
			return nil, fmt.Errorf("scanning ability row: %w", err)
		}
		a.TargetableLayers = uint32(targetable)
		a.OcclusionLayers = uint32(occlusion)
		a.Effects = nilIfEmpty(effects)
		a.AbilityTags = nilIfEmpty(abilityTags)
		a.RequiredTags = nilIfEmpty(requiredTags)
		a.BlockedByTags = nilIfEmpty(blocked)
		a.TargetRequiredTags = nilIfEmpty(targetRequired)
		a.TargetBlockedByTags = nilIfEmpty(targetBlocked)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ability rows: %w", err)
	}
	return out, nil
}

// Save сохраняет документ целиком (полная перезапись).
// Удаляет старые определения и вставляет новые в одной транзакции.
func (r *DefinitionRepository) Save(ctx context.Context, doc data.Document) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := saveTx(ctx, tx, doc); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing definitions save: %w", err)
	}

	slog.Info("saved definitions",
		"attributes", len(doc.Attributes),
		"effects", len(doc.Effects),
		"abilities", len(doc.Abilities))
	return nil
}

func saveTx(ctx context.Context, tx pgx.Tx, doc data.Document) error {
	// Abilities reference effects, effects reference attributes: delete top-down.
	for _, table := range []string{"ability_definitions", "effect_definitions", "attribute_definitions"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, a := range doc.Attributes {
		if _, err := tx.Exec(ctx, insertAttribute,
			a.ID, i, a.Name, a.Description, a.Default, a.Min, a.Max,
			a.Regeneration, a.RegenRate, a.RegenDelay,
		); err != nil {
			return fmt.Errorf("inserting attribute %s: %w", a.ID, err)
		}
	}

	for i, e := range doc.Effects {
		params := e.Params
		if params == nil {
			params = map[string]string{}
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encoding params of effect %s: %w", e.ID, err)
		}
		if _, err := tx.Exec(ctx, insertEffect,
			e.ID, i, e.Name, e.Description, e.Kind, string(raw),
			e.Duration, e.CanStack, e.MaxStacks, nonNil(e.GrantedTags),
		); err != nil {
			return fmt.Errorf("inserting effect %s: %w", e.ID, err)
		}
	}

	for i, a := range doc.Abilities {
		if _, err := tx.Exec(ctx, insertAbility,
			a.ID, i, a.Name, a.Description, a.Cooldown, a.CastTime,
			a.CanCastWhileMoving, a.Interruptible, a.Cost, a.CostAttribute,
			a.Targeting, a.Dimension, a.UseRangeCheck, a.Range, a.Radius,
			int64(a.TargetableLayers), int64(a.OcclusionLayers),
			nonNil(a.Effects), nonNil(a.AbilityTags), nonNil(a.RequiredTags),
			nonNil(a.BlockedByTags), nonNil(a.TargetRequiredTags), nonNil(a.TargetBlockedByTags),
		); err != nil {
			return fmt.Errorf("inserting ability %s: %w", a.ID, err)
		}
	}
	return nil
}

// nonNil keeps NOT NULL array columns satisfied.
func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func nilIfEmpty(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	return ss
}
