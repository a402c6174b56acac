package salesforce

// FieldMap resolves logical field and object names to their wire names under
// the deployment's managed-package namespace prefix. Built once per process
// from the configured prefix; consumers declare their logical names up front
// instead of concatenating strings at each call site.
type FieldMap struct {
	prefix string
	wire   map[string]string
}

// NewFieldMap builds the table for the given prefix and logical field names.
// Wire names follow the custom-field convention <prefix><Name>__c.
func NewFieldMap(prefix string, logical ...string) FieldMap {
	wire := make(map[string]string, len(logical))
	for _, name := range logical {
		wire[name] = prefix + name + "__c"
	}
	return FieldMap{prefix: prefix, wire: wire}
}

// Wire returns the wire name for a logical field. Names not declared up front
// still resolve by convention, so ad-hoc fields (CSV report columns) work.
func (m FieldMap) Wire(logical string) string {
	if w, ok := m.wire[logical]; ok {
		return w
	}
	return m.prefix + logical + "__c"
}

// Object returns the wire name of a custom object.
func (m FieldMap) Object(name string) string {
	return m.prefix + name + "__c"
}
