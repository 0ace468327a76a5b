package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/robheffo79/SpinoDB/pkg/database"
)

// Schema builds the read-only GraphQL schema. Documents are exposed as
// their serialized JSON text, which keeps member order intact.
func Schema(db *database.Database) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"collections": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Names of all collections",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return db.ListCollections(), nil
				},
			},
			"size": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of documents in a collection",
				Args: graphql.FieldConfigArgument{
					"collection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					coll, err := lookupCollection(db, p)
					if err != nil {
						return nil, err
					}
					return coll.Size(), nil
				},
			},
			"findOneById": &graphql.Field{
				Type:        graphql.String,
				Description: "Document with the given _id, as JSON text",
				Args: graphql.FieldConfigArgument{
					"collection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"id":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					coll, err := lookupCollection(db, p)
					if err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					if result := coll.FindOneByID(id); result != "" {
						return result, nil
					}
					return nil, nil
				},
			},
			"findOne": &graphql.Field{
				Type:        graphql.String,
				Description: "First document matching the filter, as JSON text",
				Args: graphql.FieldConfigArgument{
					"collection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"query":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					coll, err := lookupCollection(db, p)
					if err != nil {
						return nil, err
					}
					q, _ := p.Args["query"].(string)
					if result := coll.FindOne(q); result != "" {
						return result, nil
					}
					return nil, nil
				},
			},
			"find": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Matching documents as JSON text, bounded by limit",
				Args: graphql.FieldConfigArgument{
					"collection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"query":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					coll, err := lookupCollection(db, p)
					if err != nil {
						return nil, err
					}
					q, _ := p.Args["query"].(string)
					limit, _ := p.Args["limit"].(int)

					cursor, err := coll.Find(q, limit)
					if err != nil {
						return nil, err
					}
					results := make([]string, 0)
					for cursor.HasNext() {
						results = append(results, cursor.Next())
					}
					return results, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func lookupCollection(db *database.Database, p graphql.ResolveParams) (*database.Collection, error) {
	name, _ := p.Args["collection"].(string)
	coll, ok := db.GetCollection(name)
	if !ok {
		return nil, fmt.Errorf("collection not found: %s", name)
	}
	return coll, nil
}
