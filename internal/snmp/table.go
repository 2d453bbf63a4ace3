package snmp

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/soniah/gosnmp"
)

// normalizeOID ensures a leading dot; gosnmp is not consistent about it.
func normalizeOID(oid string) string {
	if strings.HasPrefix(oid, ".") {
		return oid
	}
	return "." + oid
}

// instanceIndex returns the part of name below column, e.g. "0" for
// column.0.
func instanceIndex(column, name string) (string, bool) {
	prefix := normalizeOID(column) + "."
	name = normalizeOID(name)
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return strings.TrimPrefix(name, prefix), true
}

// pduString renders a PDU value the way it arrives as text on the wire.
// Exception types yield ok=false.
func pduString(pdu gosnmp.SnmpPDU) (string, bool) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return "", false
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return strings.TrimSpace(string(b)), true
		}
	case gosnmp.OpaqueFloat:
		if f, ok := pdu.Value.(float32); ok {
			return strconv.FormatFloat(float64(f), 'f', -1, 32), true
		}
	case gosnmp.OpaqueDouble:
		if f, ok := pdu.Value.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks,
		gosnmp.Counter64, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).String(), true
	}

	switch v := pdu.Value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case *big.Int:
		return v.String(), true
	}
	return gosnmp.ToBigInt(pdu.Value).String(), true
}

// buildTable lays out per-column values as rows ordered by instance index.
// Cells a column did not return are left empty.
func buildTable(indices []string, columns []map[string]string) sensors.StringTable {
	if len(indices) == 0 {
		return nil
	}

	sorted := append([]string(nil), indices...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return oidLess(sorted[i], sorted[j])
	})

	table := make(sensors.StringTable, 0, len(sorted))
	for _, idx := range sorted {
		row := make([]string, len(columns))
		for c, col := range columns {
			row[c] = col[idx]
		}
		table = append(table, row)
	}
	return table
}

// oidLess compares dotted numeric OID fragments component-wise.
func oidLess(a, b string) bool {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, errA := strconv.Atoi(pa[i])
		nb, errB := strconv.Atoi(pb[i])
		if errA != nil || errB != nil {
			if pa[i] != pb[i] {
				return pa[i] < pb[i]
			}
			continue
		}
		if na != nb {
			return na < nb
		}
	}
	return len(pa) < len(pb)
}
