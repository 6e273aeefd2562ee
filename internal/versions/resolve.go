package versions

// Conflict describes an artifact that resolved to more than one version
// somewhere in the tree.
type Conflict struct {
	ArtifactID string   `json:"artifact_id"`
	Used       string   `json:"used"`
	Oldest     string   `json:"oldest"`
	Newest     string   `json:"newest"`
	Records    []Record `json:"records"`
}

// Resolve returns a Conflict for every artifact with two or more records, in
// collection order. Used is the shallowest record's version (nearest wins,
// first seen on ties); Oldest and Newest are the extremes under order.
func Resolve(c *Collection, order Order) []Conflict {
	if order == nil {
		order = Lexical{}
	}
	var out []Conflict
	for _, id := range c.order {
		recs := c.byID[id]
		if len(recs) < 2 {
			continue
		}
		used, oldest, newest := recs[0], recs[0].Version, recs[0].Version
		for _, r := range recs[1:] {
			if r.Depth < used.Depth {
				used = r
			}
			if order.Compare(r.Version, oldest) < 0 {
				oldest = r.Version
			}
			if order.Compare(r.Version, newest) > 0 {
				newest = r.Version
			}
		}
		out = append(out, Conflict{
			ArtifactID: id,
			Used:       used.Version,
			Oldest:     oldest,
			Newest:     newest,
			Records:    append([]Record(nil), recs...),
		})
	}
	return out
}
