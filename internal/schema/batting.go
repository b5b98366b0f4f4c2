package schema

// Batting describes the fangraphs_batting table: one row per
// (player_id, season), replaced wholesale when a season is recollected.
var Batting = newDescriptor(Descriptor{
	Kind:   KindBatting,
	Table:  "fangraphs_batting",
	Source: "fangraphs_batting",
	Columns: []Column{
		// Identity
		{Name: "player_id", Type: Text},
		{Name: "player_name", Type: Text},
		{Name: "team", Type: Text},
		{Name: "season", Type: Int},

		// Counting stats
		{Name: "games", Type: Int, Nullable: true},
		{Name: "plate_appearances", Type: Int, Nullable: true},
		{Name: "at_bats", Type: Int, Nullable: true},
		{Name: "hits", Type: Int, Nullable: true},
		{Name: "singles", Type: Int, Nullable: true},
		{Name: "doubles", Type: Int, Nullable: true},
		{Name: "triples", Type: Int, Nullable: true},
		{Name: "home_runs", Type: Int, Nullable: true},
		{Name: "runs", Type: Int, Nullable: true},
		{Name: "rbi", Type: Int, Nullable: true},
		{Name: "walks", Type: Int, Nullable: true},
		{Name: "strikeouts", Type: Int, Nullable: true},
		{Name: "stolen_bases", Type: Int, Nullable: true},
		{Name: "caught_stealing", Type: Int, Nullable: true},

		// Advanced metrics
		{Name: "woba", Type: Float, Nullable: true},
		{Name: "wrc_plus", Type: Int, Nullable: true},
		{Name: "babip", Type: Float, Nullable: true},
		{Name: "iso", Type: Float, Nullable: true},
		{Name: "spd", Type: Float, Nullable: true},
		{Name: "ubr", Type: Float, Nullable: true},
		{Name: "wrc", Type: Float, Nullable: true},
		{Name: "wrc_27", Type: Float, Nullable: true},
		{Name: "off", Type: Float, Nullable: true},
		{Name: "def", Type: Float, Nullable: true},
		{Name: "war", Type: Float, Nullable: true},

		// Batted ball
		{Name: "gb_percent", Type: Float, Nullable: true},
		{Name: "fb_percent", Type: Float, Nullable: true},
		{Name: "ld_percent", Type: Float, Nullable: true},
		{Name: "iffb_percent", Type: Float, Nullable: true},
		{Name: "hr_fb", Type: Float, Nullable: true},

		// Plate discipline
		{Name: "o_swing_percent", Type: Float, Nullable: true},
		{Name: "z_swing_percent", Type: Float, Nullable: true},
		{Name: "swing_percent", Type: Float, Nullable: true},
		{Name: "o_contact_percent", Type: Float, Nullable: true},
		{Name: "z_contact_percent", Type: Float, Nullable: true},
		{Name: "contact_percent", Type: Float, Nullable: true},
		{Name: "zone_percent", Type: Float, Nullable: true},
		{Name: "f_strike_percent", Type: Float, Nullable: true},
		{Name: "swstr_percent", Type: Float, Nullable: true},

		// Situational
		{Name: "clutch", Type: Float, Nullable: true},
		{Name: "wpa", Type: Float, Nullable: true},
		{Name: "re24", Type: Float, Nullable: true},
		{Name: "rew", Type: Float, Nullable: true},
		{Name: "pli", Type: Float, Nullable: true},
		{Name: "inlev", Type: Float, Nullable: true},
		{Name: "cents", Type: Float, Nullable: true},
		{Name: "dollars", Type: Int, Nullable: true},

		{Name: "data_source", Type: Text},
	},
	ConflictKey:  []string{"player_id", "season"},
	NaturalKey:   []string{"player_name", "team"},
	WindowColumn: "season",
})
