package repository

import (
	"sync"

	"facevote.io/entities"
	"facevote.io/infrastructure/database/connection/datastore"
	"facevote.io/infrastructure/database/repository/mongo"
)

var recognitionAuditOnce = sync.Once{}

var recognitionAuditRepository mongo.MongoRepository[entities.RecognitionAudit]

func RecognitionAuditRepo() *mongo.MongoRepository[entities.RecognitionAudit] {
	recognitionAuditOnce.Do(func() {
		recognitionAuditRepository = mongo.MongoRepository[entities.RecognitionAudit]{Model: datastore.RecognitionAuditModel}
	})
	return &recognitionAuditRepository
}
