// Package services implements the driving ports: the importer that
// turns raw sources into committed documents, the orchestrator that
// supervises embedding backfill across isolated workers, and the batch
// routine the worker process itself runs.
//
// Services depend only on domain types and ports; all infrastructure
// arrives through interfaces.
package services
