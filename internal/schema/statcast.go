package schema

// PitchEvents describes the statcast table: one row per pitch, keyed by
// (game_pk, at_bat_number, pitch_number) and upserted in place, so
// overlapping date-range collections never duplicate.
var PitchEvents = newDescriptor(Descriptor{
	Kind:   KindPitchEvent,
	Table:  "statcast",
	Source: "statcast",
	Columns: []Column{
		// Keys
		{Name: "game_pk", Type: Int},
		{Name: "at_bat_number", Type: Int},
		{Name: "pitch_number", Type: Int},
		{Name: "game_date", Type: Date},

		// Game context
		{Name: "home_team", Type: Text, Nullable: true},
		{Name: "away_team", Type: Text, Nullable: true},
		{Name: "inning", Type: Int, Nullable: true},
		{Name: "inning_topbot", Type: Text, Nullable: true},
		{Name: "outs_when_up", Type: Int, Nullable: true},
		{Name: "balls", Type: Int, Nullable: true},
		{Name: "strikes", Type: Int, Nullable: true},
		{Name: "home_score", Type: Int, Nullable: true},
		{Name: "away_score", Type: Int, Nullable: true},

		// Participants
		{Name: "player_name", Type: Text, Nullable: true},
		{Name: "batter", Type: Int, Nullable: true},
		{Name: "pitcher", Type: Int, Nullable: true},
		{Name: "stand", Type: Text, Nullable: true},
		{Name: "p_throws", Type: Text, Nullable: true},

		// Pitch tracking
		{Name: "pitch_type", Type: Text, Nullable: true},
		{Name: "release_speed", Type: Float, Nullable: true},
		{Name: "release_pos_x", Type: Float, Nullable: true},
		{Name: "release_pos_z", Type: Float, Nullable: true},
		{Name: "release_spin_rate", Type: Float, Nullable: true},
		{Name: "release_extension", Type: Float, Nullable: true},
		{Name: "zone", Type: Int, Nullable: true},
		{Name: "type", Type: Text, Nullable: true},
		{Name: "pfx_x", Type: Float, Nullable: true},
		{Name: "pfx_z", Type: Float, Nullable: true},
		{Name: "plate_x", Type: Float, Nullable: true},
		{Name: "plate_z", Type: Float, Nullable: true},
		{Name: "vx0", Type: Float, Nullable: true},
		{Name: "vy0", Type: Float, Nullable: true},
		{Name: "vz0", Type: Float, Nullable: true},
		{Name: "ax", Type: Float, Nullable: true},
		{Name: "ay", Type: Float, Nullable: true},
		{Name: "az", Type: Float, Nullable: true},
		{Name: "effective_speed", Type: Float, Nullable: true},

		// Outcome
		{Name: "events", Type: Text, Nullable: true},
		{Name: "description", Type: Text, Nullable: true},
		{Name: "hit_location", Type: Int, Nullable: true},
		{Name: "bb_type", Type: Text, Nullable: true},
		{Name: "hit_distance_sc", Type: Float, Nullable: true},
		{Name: "launch_speed", Type: Float, Nullable: true},
		{Name: "launch_angle", Type: Float, Nullable: true},
		{Name: "launch_speed_angle", Type: Int, Nullable: true},
		{Name: "estimated_ba_using_speedangle", Type: Float, Nullable: true},
		{Name: "estimated_woba_using_speedangle", Type: Float, Nullable: true},
		{Name: "woba_value", Type: Float, Nullable: true},
		{Name: "babip_value", Type: Float, Nullable: true},
		{Name: "iso_value", Type: Float, Nullable: true},
		{Name: "delta_run_exp", Type: Float, Nullable: true},
	},
	ConflictKey:  []string{"game_pk", "at_bat_number", "pitch_number"},
	NaturalKey:   []string{"game_pk", "at_bat_number", "pitch_number"},
	WindowColumn: "game_date",
})
