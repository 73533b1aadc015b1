package database

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSMedia keeps post attachments in a GridFS bucket.
type GridFSMedia struct {
	bucket *gridfs.Bucket
}

func NewGridFSMedia(m *Mongo) (*GridFSMedia, error) {
	bucket, err := gridfs.NewBucket(m.DB, options.GridFSBucket().SetName(MediaBucket))
	if err != nil {
		return nil, err
	}
	return &GridFSMedia{bucket: bucket}, nil
}

func (g *GridFSMedia) Save(ctx context.Context, filename, contentType string, src io.Reader) (primitive.ObjectID, error) {
	fileID := primitive.NewObjectID()
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	uploadStream, err := g.bucket.OpenUploadStreamWithID(fileID, filename, opts)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := io.Copy(uploadStream, src); err != nil {
		_ = uploadStream.Abort()
		return primitive.NilObjectID, err
	}
	if err := uploadStream.Close(); err != nil {
		return primitive.NilObjectID, err
	}
	return fileID, nil
}

func (g *GridFSMedia) Open(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, string, error) {
	stream, err := g.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	contentType := "application/octet-stream"
	if file := stream.GetFile(); file != nil && len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			contentType = ct
		}
	}
	return stream, contentType, nil
}

func (g *GridFSMedia) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := g.bucket.Delete(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil
	}
	return err
}
