package rank

import "inciq/pkg/knowledge"

// FeatureVector holds the structural features of one branded candidate with
// respect to a query. The field order is the contract with external scorers.
type FeatureVector struct {
	OverlapCount     int `json:"overlap_count"`
	BrandedINCITotal int `json:"branded_inci_total"`
	SupplierDegree   int `json:"supplier_degree"`
	FuncDegree       int `json:"func_degree"`
	ChemDegree       int `json:"chem_degree"`
}

// Features computes the feature vector for a branded candidate: the overlap
// between the query and the candidate's constituent set, the constituent
// count, and the candidate's degree per relation kind.
func Features(g *knowledge.Graph, query []knowledge.NodeRef, branded knowledge.NodeRef) FeatureVector {
	qset := make(map[knowledge.NodeRef]struct{}, len(query))
	for _, ref := range query {
		qset[ref] = struct{}{}
	}

	constituents := g.Incoming(branded, knowledge.EdgeContains)
	overlap := 0
	for _, ref := range constituents {
		if _, ok := qset[ref]; ok {
			overlap++
		}
	}

	return FeatureVector{
		OverlapCount:     overlap,
		BrandedINCITotal: len(constituents),
		SupplierDegree:   len(g.Outgoing(branded, knowledge.EdgeSuppliedBy)),
		FuncDegree:       len(g.Outgoing(branded, knowledge.EdgeHasFunction)),
		ChemDegree:       len(g.Outgoing(branded, knowledge.EdgeHasClass)),
	}
}
