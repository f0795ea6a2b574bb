package repository

import (
	"database/sql"

	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories groups the record collections used by the bots
type Repositories struct {
	Products  ProductRepository
	Customers CustomerRepository
	Orders    OrderRepository
}

// NewPostgres wires every repository to a Postgres connection
func NewPostgres(db *sql.DB) *Repositories {
	return &Repositories{
		Products:  NewProductRepository(db),
		Customers: NewCustomerRepository(db),
		Orders:    NewOrderRepository(db),
	}
}

// NewMongo wires every repository to a MongoDB database
func NewMongo(db *mongo.Database) *Repositories {
	return &Repositories{
		Products:  NewMongoProductRepository(db),
		Customers: NewMongoCustomerRepository(db),
		Orders:    NewMongoOrderRepository(db),
	}
}
