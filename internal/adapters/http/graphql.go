package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	metricsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SiteMetrics",
		Fields: graphql.Fields{
			"perimeterMeters":          &graphql.Field{Type: graphql.Float},
			"vertexCount":              &graphql.Field{Type: graphql.Int},
			"estimatedWalkTimeMinutes": &graphql.Field{Type: graphql.Float},
		},
	})

	entryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProgressEntry",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"date":            &graphql.Field{Type: graphql.String},
			"metersCompleted": &graphql.Field{Type: graphql.Float},
			"status":          &graphql.Field{Type: graphql.String},
			"notes":           &graphql.Field{Type: graphql.String},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProgressSummary",
		Fields: graphql.Fields{
			"totalCompletedMeters":   &graphql.Field{Type: graphql.Float},
			"completionPercentage":   &graphql.Field{Type: graphql.Int},
			"estimatedDaysRemaining": &graphql.Field{Type: graphql.Int},
		},
	})

	siteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Site",
		Fields: graphql.Fields{
			"id":                         &graphql.Field{Type: graphql.String},
			"name":                       &graphql.Field{Type: graphql.String},
			"createdAt":                  &graphql.Field{Type: graphql.String},
			"points":                     &graphql.Field{Type: graphql.NewList(geoPointType)},
			"metrics":                    &graphql.Field{Type: metricsType},
			"isClosed":                   &graphql.Field{Type: graphql.Boolean},
			"contractorCommitmentPerDay": &graphql.Field{Type: graphql.Float},
			"dailyProgress":              &graphql.Field{Type: graphql.NewList(entryType)},
			"customTileUrl":              &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sites": &graphql.Field{
				Type:        graphql.NewList(siteType),
				Description: "List all captured sites",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.List(p.Context)
				},
			},
			"site": &graphql.Field{
				Type:        siteType,
				Description: "Get a site by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Sites.GetByID(p.Context, id)
				},
			},
			"sitesNearby": &graphql.Field{
				Type:        graphql.NewList(siteType),
				Description: "Find sites near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Sites.ListNear(p.Context, lat, lng, radius, limit)
				},
			},
			"siteSummary": &graphql.Field{
				Type:        summaryType,
				Description: "Construction progress summary for a site",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Sites.Summary(p.Context, id)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
