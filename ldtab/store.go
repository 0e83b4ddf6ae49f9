package ldtab

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

// partOfTemplate is the canonical serialization of the part-of existential
// restriction, with the filler spliced in. Key order matters: it must match
// the object cells written by LDTab byte for byte.
const partOfTemplate = `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":%s}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store issues read-only queries against one LDTab statement table.
type Store struct {
	db    *gorm.DB
	table string
}

// NewStore binds a store to a statement table. The table name must be a
// plain SQL identifier; it is interpolated into query text.
func NewStore(db *gorm.DB, table string) (*Store, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("ldtab: invalid table name %q", table)
	}
	return &Store{db: db, table: table}, nil
}

// Table returns the statement table the store is bound to.
func (s *Store) Table() string { return s.table }

// Edge is one subject/object pair of an is-a row.
type Edge struct {
	Subject string
	Object  string
}

// SuperclassPairs returns every (subject, object) pair reachable from entity
// along is-a edges, closed transitively by a single recursive query. The
// UNION (rather than UNION ALL) deduplicates visited pairs, so the query
// terminates even on cyclic data; cycles are rejected by the caller. Row
// order is not guaranteed.
func (s *Store) SuperclassPairs(ctx context.Context, entity string) ([]Edge, error) {
	query := fmt.Sprintf(`WITH RECURSIVE
	superclasses( subject, object ) AS
	( SELECT subject, object FROM %[1]s WHERE subject = ? AND predicate = 'rdfs:subClassOf'
	    UNION
	    SELECT %[1]s.subject, %[1]s.object FROM %[1]s, superclasses
	    WHERE %[1]s.subject = superclasses.object AND %[1]s.predicate = 'rdfs:subClassOf'
	 ) SELECT subject, object FROM superclasses`, s.table)

	var edges []Edge
	if err := s.db.WithContext(ctx).Raw(query, entity).Scan(&edges).Error; err != nil {
		return nil, storeErr("superclass pairs", err)
	}
	return edges, nil
}

// DirectSubclasses returns the subjects of one-step is-a rows pointing at
// entity, named and anonymous alike.
func (s *Store) DirectSubclasses(ctx context.Context, entity string) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT subject FROM %s WHERE object = ? AND predicate = 'rdfs:subClassOf' ORDER BY subject`,
		s.table)

	var subjects []string
	if err := s.db.WithContext(ctx).Raw(query, entity).Scan(&subjects).Error; err != nil {
		return nil, storeErr("direct subclasses", err)
	}
	return subjects, nil
}

// DirectNamedSubclasses returns the one-step is-a children of entity whose
// identifiers are bare atoms.
func (s *Store) DirectNamedSubclasses(ctx context.Context, entity string) ([]string, error) {
	subjects, err := s.DirectSubclasses(ctx, entity)
	if err != nil {
		return nil, err
	}
	named := subjects[:0]
	for _, sub := range subjects {
		if Decode(sub).IsAtom() {
			named = append(named, sub)
		}
	}
	return named, nil
}

// DirectSubParts returns the named subjects asserted to be subclasses of the
// part-of restriction whose filler is entity; that is, entity's one-step
// parts.
func (s *Store) DirectSubParts(ctx context.Context, entity string) ([]string, error) {
	filler, err := json.Marshal(entity)
	if err != nil {
		return nil, storeErr("direct sub parts", err)
	}
	restriction := fmt.Sprintf(partOfTemplate, filler)

	query := fmt.Sprintf(
		`SELECT subject FROM %s WHERE object = ? AND predicate = 'rdfs:subClassOf' ORDER BY subject`,
		s.table)

	var subjects []string
	if err := s.db.WithContext(ctx).Raw(query, restriction).Scan(&subjects).Error; err != nil {
		return nil, storeErr("direct sub parts", err)
	}
	named := subjects[:0]
	for _, sub := range subjects {
		if Decode(sub).IsAtom() {
			named = append(named, sub)
		}
	}
	return named, nil
}

// Labels batch-fetches rdfs:label values for the given identifiers.
// Identifiers without a label are absent from the result; when a subject
// carries several labels the lexicographically first wins, keeping output
// deterministic.
func (s *Store) Labels(ctx context.Context, ids []string) (map[string]string, error) {
	labels := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	query := fmt.Sprintf(
		`SELECT subject, object FROM %s WHERE predicate = 'rdfs:label' AND subject IN ? ORDER BY subject, object`,
		s.table)

	var rows []struct {
		Subject string
		Object  string
	}
	if err := s.db.WithContext(ctx).Raw(query, ids).Scan(&rows).Error; err != nil {
		return nil, storeErr("labels", err)
	}
	for _, row := range rows {
		if _, ok := labels[row.Subject]; !ok {
			labels[row.Subject] = row.Object
		}
	}
	return labels, nil
}

// Label fetches the label of a single identifier, or ErrNotFound.
func (s *Store) Label(ctx context.Context, id string) (string, error) {
	labels, err := s.Labels(ctx, []string{id})
	if err != nil {
		return "", err
	}
	label, ok := labels[id]
	if !ok {
		return "", fmt.Errorf("label for %q: %w", id, ErrNotFound)
	}
	return label, nil
}

// PreferredRoots returns the objects of preferred-root annotation rows.
func (s *Store) PreferredRoots(ctx context.Context) (map[string]struct{}, error) {
	query := fmt.Sprintf(
		`SELECT object FROM %s WHERE predicate = 'obo:IAO_0000700'`, s.table)

	var objects []string
	if err := s.db.WithContext(ctx).Raw(query).Scan(&objects).Error; err != nil {
		return nil, storeErr("preferred roots", err)
	}
	roots := make(map[string]struct{}, len(objects))
	for _, o := range objects {
		roots[o] = struct{}{}
	}
	return roots, nil
}
