package dignity

import "jyotish-systemv1/internal/model"

// Relation is the three-valued natural relationship.
type Relation int

const (
	Hostile Relation = iota - 1
	Indifferent
	Friendly
)

func (r Relation) String() string {
	switch r {
	case Friendly:
		return "friend"
	case Hostile:
		return "enemy"
	}
	return "neutral"
}

// natural lists friends and enemies; everything else is neutral.
var natural = map[model.Graha]struct{ friends, enemies []model.Graha }{
	model.Sun:     {[]model.Graha{model.Moon, model.Mars, model.Jupiter}, []model.Graha{model.Venus, model.Saturn}},
	model.Moon:    {[]model.Graha{model.Sun, model.Mercury}, nil},
	model.Mars:    {[]model.Graha{model.Sun, model.Moon, model.Jupiter}, []model.Graha{model.Mercury}},
	model.Mercury: {[]model.Graha{model.Sun, model.Venus}, []model.Graha{model.Moon}},
	model.Jupiter: {[]model.Graha{model.Sun, model.Moon, model.Mars}, []model.Graha{model.Mercury, model.Venus}},
	model.Venus:   {[]model.Graha{model.Mercury, model.Saturn}, []model.Graha{model.Sun, model.Moon}},
	model.Saturn:  {[]model.Graha{model.Mercury, model.Venus}, []model.Graha{model.Sun, model.Moon, model.Mars}},
	model.Rahu:    {[]model.Graha{model.Mercury, model.Venus, model.Saturn}, []model.Graha{model.Sun, model.Moon, model.Mars}},
	model.Ketu:    {[]model.Graha{model.Mars, model.Venus, model.Saturn}, []model.Graha{model.Sun, model.Moon}},
}

// Natural is how a regards b by the fixed classical table.
func Natural(a, b model.Graha) Relation {
	n, ok := natural[a]
	if !ok || a == b {
		return Indifferent
	}
	for _, f := range n.friends {
		if f == b {
			return Friendly
		}
	}
	for _, e := range n.enemies {
		if e == b {
			return Hostile
		}
	}
	return Indifferent
}

// TemporalFriend reports whether a graha in sign b is a temporary friend of
// one in sign a: b is 2nd, 3rd, 4th, 10th, 11th or 12th from a.
func TemporalFriend(a, b model.Sign) bool {
	switch a.HouseFrom(b) {
	case 2, 3, 4, 10, 11, 12:
		return true
	}
	return false
}

// Compound is the five-fold relationship.
type Compound int

const (
	GreatEnemy Compound = iota - 2
	CompoundEnemy
	CompoundNeutral
	CompoundFriend
	GreatFriend
)

var compoundNames = [...]string{"great_enemy", "enemy", "neutral", "friend", "great_friend"}

func (c Compound) String() string { return compoundNames[c+2] }

func (c Compound) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Compound) UnmarshalText(b []byte) error {
	i, err := indexOf(compoundNames[:], b, "relationship")
	*c = Compound(i - 2)
	return err
}

// Combine adds the natural relation (-1, 0, +1) to the temporal one (+1
// friend, -1 enemy).
func Combine(n Relation, temporalFriend bool) Compound {
	t := -1
	if temporalFriend {
		t = 1
	}
	return Compound(int(n) + t)
}

// Relationships is the compound relationship of every graha pair in a chart.
type Relationships map[model.Graha]map[model.Graha]Compound

// Relate computes the compound relationships among the nine grahas.
func Relate(c *model.NatalChart) Relationships {
	out := make(Relationships, len(model.Grahas))
	for _, a := range model.Grahas {
		row := make(map[model.Graha]Compound, len(model.Grahas)-1)
		for _, b := range model.Grahas {
			if a == b {
				continue
			}
			row[b] = Combine(Natural(a, b), TemporalFriend(c.Position(a).Sign, c.Position(b).Sign))
		}
		out[a] = row
	}
	return out
}

// Between returns how a regards b; a graha is neutral to itself.
func (r Relationships) Between(a, b model.Graha) Compound {
	if row, ok := r[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	return CompoundNeutral
}
