package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"order-bot/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the catalog import tool
const (
	ProductsCollection  = "botProducts"
	CustomersCollection = "botUsers"
	OrdersCollection    = "botOrders"
)

type productDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Category        string             `bson:"category"`
	Price           int64              `bson:"price"`
	Stock           int                `bson:"stock"`
	Image           string             `bson:"image"`
	ImageOutOfStock string             `bson:"image_hira"`
}

func (d *productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Category:        d.Category,
		Price:           d.Price,
		Stock:           d.Stock,
		Image:           d.Image,
		ImageOutOfStock: d.ImageOutOfStock,
	}
}

type mongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a MongoDB backed ProductRepository
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(ProductsCollection)}
}

func (r *mongoProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	filter := bson.M{"category": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(category) + "$",
		Options: "i",
	}}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toDomain())
	}
	return products, nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return doc.toDomain(), nil
}

// ReplaceAll clears the collection and inserts products. Mongo has no
// cheap cross-document transaction outside replica sets, so a failure
// midway leaves a partial catalog; rerun the import.
func (r *mongoProductRepository) ReplaceAll(ctx context.Context, products []*domain.Product) (int, error) {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("failed to clear products: %w", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			oid = primitive.NewObjectID()
		}
		p.ID = oid.Hex()
		docs = append(docs, productDocument{
			ID:              oid,
			Name:            p.Name,
			Category:        p.Category,
			Price:           p.Price,
			Stock:           p.Stock,
			Image:           p.Image,
			ImageOutOfStock: p.ImageOutOfStock,
		})
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert products: %w", err)
	}
	return len(result.InsertedIDs), nil
}

type customerDocument struct {
	ChatID    int64     `bson:"chatId"`
	Name      string    `bson:"name"`
	Phone     string    `bson:"phone"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoCustomerRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomerRepository creates a MongoDB backed CustomerRepository
func NewMongoCustomerRepository(db *mongo.Database) CustomerRepository {
	return &mongoCustomerRepository{collection: db.Collection(CustomersCollection)}
}

func (r *mongoCustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	filter := bson.M{"chatId": customer.ChatID}
	update := bson.M{"$set": bson.M{
		"name":      customer.Name,
		"phone":     customer.Phone,
		"updatedAt": customer.UpdatedAt,
	}}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func (r *mongoCustomerRepository) FindByChatID(ctx context.Context, chatID int64) (*domain.Customer, error) {
	var doc customerDocument
	if err := r.collection.FindOne(ctx, bson.M{"chatId": chatID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &domain.Customer{
		ChatID:    doc.ChatID,
		Name:      doc.Name,
		Phone:     doc.Phone,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

type orderDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CustomerName  string             `bson:"clientName"`
	CustomerPhone string             `bson:"clientPhone"`
	ChatID        int64              `bson:"chatId"`
	Items         []domain.OrderItem `bson:"cart"`
	PaymentType   domain.PaymentType `bson:"paymentType"`
	ProofImage    string             `bson:"checkFileId,omitempty"`
	ProofNote     string             `bson:"cardReference,omitempty"`
	Status        domain.OrderStatus `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
	DeliveredAt   *time.Time         `bson:"deliveredAt,omitempty"`
}

func (d *orderDocument) toDomain() *domain.Order {
	return &domain.Order{
		ID:            d.ID.Hex(),
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		ChatID:        d.ChatID,
		Items:         d.Items,
		PaymentType:   d.PaymentType,
		ProofImage:    d.ProofImage,
		ProofNote:     d.ProofNote,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		DeliveredAt:   d.DeliveredAt,
	}
}

type mongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a MongoDB backed OrderRepository
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{collection: db.Collection(OrdersCollection)}
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc := orderDocument{
		ID:            primitive.NewObjectID(),
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		ChatID:        order.ChatID,
		Items:         order.Items,
		PaymentType:   order.PaymentType,
		ProofImage:    order.ProofImage,
		ProofNote:     order.ProofNote,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt,
	}
	if doc.Items == nil {
		doc.Items = []domain.OrderItem{}
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.ID = doc.ID.Hex()
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var doc orderDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}

	set := bson.D{{Key: "status", Value: status}}
	if status == domain.OrderStatusDelivered {
		// keep the first delivery time
		set = append(set, bson.E{Key: "deliveredAt", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$deliveredAt", at}}}})
	}
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}

	result, err := r.collection.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *mongoOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, docs[i].toDomain())
	}
	return orders, nil
}
