package sensors

// labelIndex resolves a service item (the sensor label) back to its position
// in AllSensors. Built once at package load.
var labelIndex = buildLabelIndex()

func buildLabelIndex() map[string]int {
	idx := make(map[string]int, len(AllSensors))
	for i, s := range AllSensors {
		idx[s.Label] = i
	}
	return idx
}

// IndexByLabel returns the table position of the sensor with the given label.
func IndexByLabel(label string) (int, bool) {
	i, ok := labelIndex[label]
	return i, ok
}

// GetSensorByLabel returns the sensor definition for label, or nil.
func GetSensorByLabel(label string) *SensorDefinition {
	i, ok := labelIndex[label]
	if !ok {
		return nil
	}
	return &AllSensors[i]
}

// GetSensorByIdent returns the sensor definition with the given ident, or nil.
func GetSensorByIdent(ident string) *SensorDefinition {
	for i := range AllSensors {
		if AllSensors[i].Ident == ident {
			return &AllSensors[i]
		}
	}
	return nil
}

// ColumnOIDs returns the absolute column OIDs in table order. This is the
// fetch list handed to the SNMP client.
func ColumnOIDs() []string {
	oids := make([]string, 0, len(AllSensors))
	for _, s := range AllSensors {
		oids = append(oids, s.FullOID())
	}
	return oids
}
