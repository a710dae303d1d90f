package aggregator

import "dvfmap/internal/models"

// Indexes maps territory codes to their transactions, in input order. It is
// built once and only read afterwards.
type Indexes struct {
	ByDept    map[string][]models.Transaction
	ByCommune map[string][]models.Transaction
	BySection map[string][]models.Transaction
}

// BuildIndexes fills the three indexes in a single pass. A transaction
// without a given code is absent from that index.
func BuildIndexes(transactions []models.Transaction) *Indexes {
	idx := &Indexes{
		ByDept:    make(map[string][]models.Transaction),
		ByCommune: make(map[string][]models.Transaction),
		BySection: make(map[string][]models.Transaction),
	}
	for _, tx := range transactions {
		if tx.DeptCode != "" {
			idx.ByDept[tx.DeptCode] = append(idx.ByDept[tx.DeptCode], tx)
		}
		if tx.CommuneCode != "" {
			idx.ByCommune[tx.CommuneCode] = append(idx.ByCommune[tx.CommuneCode], tx)
		}
		if tx.SectionCode != "" {
			idx.BySection[tx.SectionCode] = append(idx.BySection[tx.SectionCode], tx)
		}
	}
	return idx
}

func (idx *Indexes) forScale(scale models.Scale) map[string][]models.Transaction {
	if idx == nil {
		return nil
	}
	switch scale {
	case models.ScaleCommune:
		return idx.ByCommune
	case models.ScaleSection:
		return idx.BySection
	default:
		return idx.ByDept
	}
}

// Lookup returns a copy of the transactions of a territory, so callers can
// filter or reorder it without touching the index.
func (idx *Indexes) Lookup(scale models.Scale, code string) []models.Transaction {
	txs := idx.forScale(scale)[code]
	if len(txs) == 0 {
		return nil
	}
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out
}

// Codes returns every territory code known at a scale.
func (idx *Indexes) Codes(scale models.Scale) []string {
	m := idx.forScale(scale)
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	return codes
}
