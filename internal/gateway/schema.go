package gateway

import "github.com/graphql-go/graphql"

func nonNullString() graphql.Output {
	return graphql.NewNonNull(graphql.String)
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: nonNullString()},
		"username": &graphql.Field{Type: nonNullString()},
	},
})

var bookType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Book",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: nonNullString()},
		"title":         &graphql.Field{Type: nonNullString()},
		"author":        &graphql.Field{Type: nonNullString()},
		"publishedYear": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"genre":         &graphql.Field{Type: nonNullString()},
		"userId":        &graphql.Field{Type: nonNullString()},
	},
})

var authResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthResponse",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: nonNullString()},
		"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
	},
})

func stringArgs(names ...string) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for _, name := range names {
		args[name] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	}

	return args
}

func bookInputArgs(keyName string) graphql.FieldConfigArgument {
	args := stringArgs(keyName, "title", "author", "genre")
	args["publishedYear"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}

	return args
}

func (g *Gateway) buildSchema() (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getBooks": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookType))),
				Args:    stringArgs("userId"),
				Resolve: g.resolveGetBooks,
			},
			"getBook": &graphql.Field{
				Type:    bookType,
				Args:    stringArgs("id"),
				Resolve: g.resolveGetBook,
			},
			"searchBooks": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookType))),
				Args:    stringArgs("userId", "query"),
				Resolve: g.resolveSearchBooks,
			},
			"getUser": &graphql.Field{
				Type:    userType,
				Args:    stringArgs("id"),
				Resolve: g.resolveGetUser,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type:    graphql.NewNonNull(authResponseType),
				Args:    stringArgs("username", "password"),
				Resolve: g.resolveRegister,
			},
			"login": &graphql.Field{
				Type:    graphql.NewNonNull(authResponseType),
				Args:    stringArgs("username", "password"),
				Resolve: g.resolveLogin,
			},
			"createBook": &graphql.Field{
				Type:    graphql.NewNonNull(bookType),
				Args:    bookInputArgs("userId"),
				Resolve: g.resolveCreateBook,
			},
			"updateBook": &graphql.Field{
				Type:    bookType,
				Args:    bookInputArgs("id"),
				Resolve: g.resolveUpdateBook,
			},
			"deleteBook": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Args:    stringArgs("id"),
				Resolve: g.resolveDeleteBook,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
