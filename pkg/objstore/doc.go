/*

Package objstore describes how s3blocks talks about immutable cloud object storage such as AWS S3 or a
MinIO server, independent of the block that reaches it.

Limitations and Design Considerations

Access control - credentials are handed to the SDK as they are. Whatever the store enforces is what the caller
gets; there is no additional policy layer.

Multipart uploads - large writes go through the SDK upload manager, which splits them into parts on its own.
Callers only ever see a single write.

Errors - the standard gRPC status codes (https://github.com/grpc/grpc/blob/master/doc/statuscodes.md) correspond
closely to the needs of object storage, so Code maps SDK and filesystem errors onto them. The original error is
always kept; the code is only a classification for callers that need to branch on it.

Consistency guarantees - left to the store. A read following a write returns whatever the store returns.

Retries - left to the SDK client and its configured retry count.
*/
package objstore
