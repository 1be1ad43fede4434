package hazmat

// ClassificationFromRow builds a Classification from a corpus row,
// copying the enrichment fields. packingGroup overrides the row's own
// group when non-empty (concentration-gated rules choose the group).
func ClassificationFromRow(row *RegulatoryRow, packingGroup PackingGroup, confidence float64, source Source) *Classification {
	c := &Classification{
		UNNumber:            String(row.IDNumber),
		ProperShippingName:  String(row.FullName()),
		HazardClass:         String(row.ClassOrDivision),
		Confidence:          confidence,
		Source:              source,
		Packaging:           row.Packaging,
		QuantityLimitations: row.QuantityLimitations,
		SpecialProvisions:   row.SpecialProvisions,
	}
	if packingGroup == "" && row.PackingGroup != "" {
		packingGroup = PackingGroup(row.PackingGroup)
	}
	if packingGroup != "" {
		c.PackingGroup = PG(packingGroup)
	}
	if row.ERGGuide != "" {
		c.ERGGuide = String(row.ERGGuide)
	}
	if row.VesselStowage != "" {
		c.VesselStowage = String(row.VesselStowage)
	}
	c.Citations = append(c.Citations, Citation{
		Kind:      CitationCFR,
		Reference: "49 CFR 172.101",
		Detail:    row.FullName(),
	})
	if row.ERGGuide != "" {
		c.Citations = append(c.Citations, Citation{
			Kind:      CitationERG,
			Reference: row.ERGGuide,
		})
	}
	return c
}
