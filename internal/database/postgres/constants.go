package postgres

// =============================================================================
// Settings and Recipe Queries
// =============================================================================

const (
	sqlSelectSettings = `
		SELECT enabled, allow_auto_crafting, global_cooldown_seconds
		FROM crafting_settings
		WHERE id = 1
	`

	sqlSelectRecipeByName = `
		SELECT r.recipe_id, r.name, r.enabled, r.cooldown_seconds, r.allow_auto,
		       r.result_kind, r.result_ref_id, r.result_quantity, r.result_special, r.created_at,
		       CASE r.result_kind
		           WHEN 'BALL' THEN (SELECT b.name FROM balls b WHERE b.ball_id = r.result_ref_id)
		           ELSE (SELECT i.name FROM items i WHERE i.item_id = r.result_ref_id)
		       END AS result_name
		FROM crafting_recipes r
		WHERE LOWER(r.name) = LOWER($1)
	`

	sqlSelectAllRecipes = `
		SELECT r.recipe_id, r.name, r.enabled, r.cooldown_seconds, r.allow_auto,
		       r.result_kind, r.result_ref_id, r.result_quantity, r.result_special, r.created_at,
		       CASE r.result_kind
		           WHEN 'BALL' THEN (SELECT b.name FROM balls b WHERE b.ball_id = r.result_ref_id)
		           ELSE (SELECT i.name FROM items i WHERE i.item_id = r.result_ref_id)
		       END AS result_name
		FROM crafting_recipes r
		ORDER BY r.name
	`

	sqlSelectIngredients = `
		SELECT g.kind, g.ref_id, g.quantity,
		       CASE g.kind
		           WHEN 'BALL' THEN (SELECT b.name FROM balls b WHERE b.ball_id = g.ref_id)
		           ELSE (SELECT i.name FROM items i WHERE i.item_id = g.ref_id)
		       END AS name
		FROM crafting_ingredients g
		WHERE g.recipe_id = $1
		ORDER BY g.position, g.ingredient_id
	`
)

// =============================================================================
// Profile and Recipe State Queries
// =============================================================================

const (
	sqlInsertProfileIfAbsent = `
		INSERT INTO crafting_profiles (player_id)
		VALUES ($1::uuid)
		ON CONFLICT (player_id) DO NOTHING
	`

	sqlSelectProfile = `
		SELECT last_crafted_at FROM crafting_profiles WHERE player_id = $1::uuid
	`

	sqlSelectProfileForUpdate = sqlSelectProfile + ` FOR UPDATE`

	sqlInsertStateIfAbsent = `
		INSERT INTO crafting_recipe_states (player_id, recipe_id)
		VALUES ($1::uuid, $2)
		ON CONFLICT (player_id, recipe_id) DO NOTHING
	`

	sqlSelectState = `
		SELECT last_crafted_at, auto_enabled
		FROM crafting_recipe_states
		WHERE player_id = $1::uuid AND recipe_id = $2
	`

	sqlSelectStateForUpdate = sqlSelectState + ` FOR UPDATE`

	sqlSetAutoEnabled = `
		INSERT INTO crafting_recipe_states (player_id, recipe_id, auto_enabled)
		VALUES ($1::uuid, $2, $3)
		ON CONFLICT (player_id, recipe_id) DO UPDATE
		SET auto_enabled = EXCLUDED.auto_enabled
	`

	sqlSetProfileLastCrafted = `
		UPDATE crafting_profiles SET last_crafted_at = $2 WHERE player_id = $1::uuid
	`

	sqlSetStateLastCrafted = `
		INSERT INTO crafting_recipe_states (player_id, recipe_id, last_crafted_at)
		VALUES ($1::uuid, $2, $3)
		ON CONFLICT (player_id, recipe_id) DO UPDATE
		SET last_crafted_at = EXCLUDED.last_crafted_at
	`
)

// =============================================================================
// Resource Queries
// =============================================================================

const (
	sqlCountOwnedBalls = `
		SELECT COUNT(*) FROM ball_instances
		WHERE player_id = $1::uuid AND ball_id = $2 AND NOT deleted
	`

	// Consumption picks the oldest non-deleted instances, FIFO by catch
	// date, and locks them before marking
	sqlConsumeOldestBalls = `
		WITH oldest AS (
			SELECT instance_id FROM ball_instances
			WHERE player_id = $1::uuid AND ball_id = $2 AND NOT deleted
			ORDER BY caught_at, instance_id
			LIMIT $3
			FOR UPDATE
		)
		UPDATE ball_instances SET deleted = TRUE
		WHERE instance_id IN (SELECT instance_id FROM oldest)
	`

	sqlSelectItemBalance = `
		SELECT quantity FROM player_item_balances
		WHERE player_id = $1::uuid AND item_id = $2
	`

	// The quantity >= guard makes a negative-going decrement match no
	// row instead of corrupting the balance
	sqlDecrementItemBalance = `
		UPDATE player_item_balances
		SET quantity = quantity - $3
		WHERE player_id = $1::uuid AND item_id = $2 AND quantity >= $3
		RETURNING quantity
	`

	sqlIncrementItemBalance = `
		INSERT INTO player_item_balances (player_id, item_id, quantity)
		VALUES ($1::uuid, $2, $3)
		ON CONFLICT (player_id, item_id) DO UPDATE
		SET quantity = player_item_balances.quantity + EXCLUDED.quantity
		RETURNING quantity
	`

	sqlCreateBallInstances = `
		INSERT INTO ball_instances (player_id, ball_id, special, caught_at)
		SELECT $1::uuid, $2, $3, $4 FROM generate_series(1, $5)
	`
)

// =============================================================================
// Craft Log Queries
// =============================================================================

const (
	sqlInsertAttempt = `
		INSERT INTO crafting_log (player_id, recipe_id, recipe_name, success, message, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
	`

	sqlSelectAttemptsByPlayer = `
		SELECT id, player_id::text, recipe_id, recipe_name, success, message, created_at
		FROM crafting_log
		WHERE player_id = $1::uuid
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	sqlDeleteOldAttempts = `
		DELETE FROM crafting_log
		WHERE created_at < now() - ($1::int * interval '1 day')
	`
)

// =============================================================================
// Player Queries
// =============================================================================

const (
	sqlSelectPlayerByDiscordID = `
		SELECT player_id::text, discord_id, username, created_at
		FROM players
		WHERE discord_id = $1
	`

	sqlUpsertPlayer = `
		INSERT INTO players (discord_id, username)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE
		SET username = EXCLUDED.username
		RETURNING player_id::text, discord_id, username, created_at
	`
)

// =============================================================================
// Event Queries
// =============================================================================

const (
	sqlSelectEventByName = `
		SELECT event_id, name, description, enabled, is_permanent, start_date, end_date, created_at
		FROM events
		WHERE LOWER(name) = LOWER($1) AND enabled
	`

	sqlSelectAllEvents = `
		SELECT event_id, name, description, enabled, is_permanent, start_date, end_date, created_at
		FROM events
		ORDER BY created_at DESC
	`

	sqlSelectEventBalls = `
		SELECT b.ball_id, b.name, b.enabled, eb.featured
		FROM event_balls eb
		JOIN balls b ON b.ball_id = eb.ball_id
		WHERE eb.event_id = $1
		ORDER BY b.name
	`
)

// =============================================================================
// Recipe Sync Queries
// =============================================================================

const (
	sqlSelectBallByName = `
		SELECT ball_id, name, enabled FROM balls WHERE LOWER(name) = LOWER($1)
	`

	sqlSelectItemByName = `
		SELECT item_id, name FROM items WHERE LOWER(name) = LOWER($1)
	`

	sqlSelectSyncChecksum = `
		SELECT checksum FROM recipe_sync_metadata WHERE name = $1
	`

	sqlUpsertSyncChecksum = `
		INSERT INTO recipe_sync_metadata (name, checksum, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET checksum = EXCLUDED.checksum, updated_at = now()
	`

	sqlUpsertRecipe = `
		INSERT INTO crafting_recipes (name, enabled, cooldown_seconds, allow_auto,
		                              result_kind, result_ref_id, result_quantity, result_special)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (LOWER(name)) DO UPDATE
		SET name = EXCLUDED.name,
		    enabled = EXCLUDED.enabled,
		    cooldown_seconds = EXCLUDED.cooldown_seconds,
		    allow_auto = EXCLUDED.allow_auto,
		    result_kind = EXCLUDED.result_kind,
		    result_ref_id = EXCLUDED.result_ref_id,
		    result_quantity = EXCLUDED.result_quantity,
		    result_special = EXCLUDED.result_special
		RETURNING recipe_id
	`

	sqlDeleteIngredients = `
		DELETE FROM crafting_ingredients WHERE recipe_id = $1
	`

	sqlInsertIngredient = `
		INSERT INTO crafting_ingredients (recipe_id, position, kind, ref_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
)
