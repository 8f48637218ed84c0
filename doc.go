/*
Package nutsquery implements the query execution core of an embedded database: it picks a physical
access path for a logical query, runs it against an ordered key-value store and pages through the
result with opaque continuation tokens.

Usage

nutsquery has the following main types: Engine, Query, Predicate, Table and Store. A Table describes
the fields, primary key and secondary indexes of a collection; a Store holds one ordered index per
index identity; an Engine plans and executes queries over both.

Every call to Query is independent. A page that has more rows carries a Next token; passing it back
with the same query resumes strictly after the last row returned. A token issued for another query
shape, direction or initial offset is rejected, and the documented recovery is to drop the token and
restart from the first page.

See the examples for more usage details.
*/
package nutsquery
