package schema

// Pitching describes the fangraphs_pitching table: one row per
// (player_id, season), replaced wholesale when a season is recollected.
var Pitching = newDescriptor(Descriptor{
	Kind:   KindPitching,
	Table:  "fangraphs_pitching",
	Source: "fangraphs_pitching",
	Columns: []Column{
		// Identity
		{Name: "player_id", Type: Text},
		{Name: "player_name", Type: Text},
		{Name: "team", Type: Text},
		{Name: "season", Type: Int},

		// Counting stats
		{Name: "wins", Type: Int, Nullable: true},
		{Name: "losses", Type: Int, Nullable: true},
		{Name: "saves", Type: Int, Nullable: true},
		{Name: "holds", Type: Int, Nullable: true},
		{Name: "games", Type: Int, Nullable: true},
		{Name: "games_started", Type: Int, Nullable: true},
		{Name: "innings_pitched", Type: Float, Nullable: true},
		{Name: "hits_allowed", Type: Int, Nullable: true},
		{Name: "runs_allowed", Type: Int, Nullable: true},
		{Name: "earned_runs", Type: Int, Nullable: true},
		{Name: "home_runs_allowed", Type: Int, Nullable: true},
		{Name: "walks_allowed", Type: Int, Nullable: true},
		{Name: "strikeouts", Type: Int, Nullable: true},

		// Run prevention
		{Name: "era", Type: Float, Nullable: true},
		{Name: "whip", Type: Float, Nullable: true},
		{Name: "fip", Type: Float, Nullable: true},
		{Name: "xfip", Type: Float, Nullable: true},
		{Name: "siera", Type: Float, Nullable: true},
		{Name: "k_9", Type: Float, Nullable: true},
		{Name: "bb_9", Type: Float, Nullable: true},
		{Name: "hr_9", Type: Float, Nullable: true},
		{Name: "k_bb", Type: Float, Nullable: true},

		// Batted ball
		{Name: "gb_percent", Type: Float, Nullable: true},
		{Name: "fb_percent", Type: Float, Nullable: true},
		{Name: "ld_percent", Type: Float, Nullable: true},
		{Name: "iffb_percent", Type: Float, Nullable: true},
		{Name: "hr_fb", Type: Float, Nullable: true},
		{Name: "babip", Type: Float, Nullable: true},
		{Name: "lob_percent", Type: Float, Nullable: true},

		// Pitch mix
		{Name: "fb_velocity", Type: Float, Nullable: true},
		{Name: "fb_percent_usage", Type: Float, Nullable: true},
		{Name: "sl_percent", Type: Float, Nullable: true},
		{Name: "ct_percent", Type: Float, Nullable: true},
		{Name: "cb_percent", Type: Float, Nullable: true},
		{Name: "ch_percent", Type: Float, Nullable: true},
		{Name: "sf_percent", Type: Float, Nullable: true},
		{Name: "kn_percent", Type: Float, Nullable: true},

		// Win probability
		{Name: "war", Type: Float, Nullable: true},
		{Name: "wpa", Type: Float, Nullable: true},
		{Name: "re24", Type: Float, Nullable: true},
		{Name: "rew", Type: Float, Nullable: true},
		{Name: "pli", Type: Float, Nullable: true},
		{Name: "inlev", Type: Float, Nullable: true},
		{Name: "gmli", Type: Float, Nullable: true},
		{Name: "wpa_minus", Type: Float, Nullable: true},
		{Name: "wpa_plus", Type: Float, Nullable: true},

		{Name: "data_source", Type: Text},
	},
	ConflictKey:  []string{"player_id", "season"},
	NaturalKey:   []string{"player_name", "team"},
	WindowColumn: "season",
})
